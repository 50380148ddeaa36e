package api

import (
	"encoding/json"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/checkerhq/checker/internal/models"
)

// decode reads and validates a JSON request body into dst. On failure it
// writes the error response and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body.")
		return false
	}
	if v, ok := dst.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return false
		}
	}
	return true
}

func validTimezone(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := time.LoadLocation(s); err != nil {
		return validation.NewError("validation_timezone", "must be a valid IANA timezone")
	}
	return nil
}

// RegisterRequest is the body for POST /v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// Validate validates the registration request.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&r.Name, validation.Length(0, 100)),
		validation.Field(&r.Timezone, validation.By(validTimezone)),
	)
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the login request.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdateProfileRequest is the body for PUT /v1/users/me; nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Timezone *string `json:"timezone"`
	Theme    *string `json:"theme"`
}

// Validate validates the profile update.
func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, 100)),
		validation.Field(&r.Timezone, validation.By(func(v any) error {
			if r.Timezone == nil {
				return nil
			}
			return validTimezone(*r.Timezone)
		})),
		validation.Field(&r.Theme, validation.In("light", "dark", "system")),
	)
}

// CreateAPIKeyRequest is the body for POST /v1/api-keys.
type CreateAPIKeyRequest struct {
	Name          string   `json:"name"`
	Scopes        []string `json:"scopes"`
	ExpiresInDays int      `json:"expiresInDays"`
}

// Validate validates the key creation request.
func (r CreateAPIKeyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Scopes, validation.Each(validation.In(
			models.ScopeRead, models.ScopeWrite, models.ScopeDelete, models.ScopeAdmin))),
		validation.Field(&r.ExpiresInDays, validation.Min(0)),
	)
}

// CreateBoardRequest is the body for POST /v1/boards.
type CreateBoardRequest struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	Emoji        string   `json:"emoji"`
	Color        string   `json:"color"`
	UnitType     string   `json:"unitType"`
	Unit         *string  `json:"unit"`
	TargetAmount *float64 `json:"targetAmount"`
}

// Validate validates the board creation request.
func (r CreateBoardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Description, validation.Length(0, 500)),
		validation.Field(&r.UnitType, validation.Required, validation.In(
			models.UnitBoolean, models.UnitQuantity, models.UnitDuration)),
		validation.Field(&r.TargetAmount, validation.Min(0.0)),
	)
}

// UpdateBoardRequest is the body for PUT /v1/boards/{id}; nil fields are
// left unchanged.
type UpdateBoardRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Emoji        *string  `json:"emoji"`
	Color        *string  `json:"color"`
	UnitType     *string  `json:"unitType"`
	Unit         *string  `json:"unit"`
	TargetAmount *float64 `json:"targetAmount"`
}

// Validate validates the board update.
func (r UpdateBoardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 50)),
		validation.Field(&r.Description, validation.Length(0, 500)),
		validation.Field(&r.UnitType, validation.In(
			models.UnitBoolean, models.UnitQuantity, models.UnitDuration)),
		validation.Field(&r.TargetAmount, validation.Min(0.0)),
	)
}

// CreateCheckInRequest is the body for POST /v1/boards/{boardID}/check-ins.
type CreateCheckInRequest struct {
	Date   string   `json:"date"`
	Amount *float64 `json:"amount"`
	Note   *string  `json:"note"`
}

// Validate validates the check-in creation request.
func (r CreateCheckInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Date, validation.Date("2006-01-02")),
		validation.Field(&r.Note, validation.Length(0, 500)),
	)
}

// UpdateCheckInRequest is the body for PUT /v1/check-ins/{id}; nil fields
// are left unchanged.
type UpdateCheckInRequest struct {
	Amount *float64 `json:"amount"`
	Note   *string  `json:"note"`
}

// Validate validates the check-in update.
func (r UpdateCheckInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Note, validation.Length(0, 500)),
	)
}

// QuickCheckInRequest is the body for POST /v1/quick/check-in. Exactly one
// of BoardID or BoardName resolves the board.
type QuickCheckInRequest struct {
	BoardID   string   `json:"boardId"`
	BoardName string   `json:"boardName"`
	Amount    *float64 `json:"amount"`
	Note      *string  `json:"note"`
}

// Validate validates the quick check-in request.
func (r QuickCheckInRequest) Validate() error {
	if r.BoardID == "" && r.BoardName == "" {
		return validation.NewError("validation_board_ref", "either boardId or boardName is required")
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Note, validation.Length(0, 500)),
	)
}
