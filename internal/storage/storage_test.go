package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "checker-storage-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB) *models.User {
	t.Helper()
	now := time.Now().UTC()
	u := &models.User{
		ID:        uuid.NewString(),
		Email:     uuid.NewString() + "@example.com",
		Timezone:  "UTC",
		Theme:     "system",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func seedBoard(t *testing.T, db *DB, userID, name string) *models.Board {
	t.Helper()
	now := time.Now().UTC()
	b := &models.Board{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Emoji:     "📊",
		Color:     "#3B82F6",
		UnitType:  models.UnitBoolean,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.CreateBoard(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	return b
}

func seedCheckIn(t *testing.T, db *DB, boardID, userID, date string, session int) *models.CheckIn {
	t.Helper()
	now := time.Now().UTC()
	ci := &models.CheckIn{
		ID:            uuid.NewString(),
		BoardID:       boardID,
		UserID:        userID,
		Date:          date,
		Timestamp:     now,
		SessionNumber: session,
		CreatedAt:     now,
	}
	err := db.InTx(context.Background(), func(tx Tx) error {
		return tx.InsertCheckIn(ci)
	})
	if err != nil {
		t.Fatal(err)
	}
	return ci
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)

	dup := *u
	dup.ID = uuid.NewString()
	if err := db.CreateUser(context.Background(), &dup); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCreateBoard_DuplicateNamePerUser(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	other := seedUser(t, db)

	seedBoard(t, db, u.ID, "Yoga")
	b := &models.Board{
		ID: uuid.NewString(), UserID: u.ID, Name: "Yoga", Emoji: "x", Color: "x",
		UnitType: models.UnitBoolean, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	if err := db.CreateBoard(context.Background(), b); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}

	// The same name is fine under a different owner.
	seedBoard(t, db, other.ID, "Yoga")
}

func TestDeleteBoard_CascadesCheckIns(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	b := seedBoard(t, db, u.ID, "Cascade")
	ci := seedCheckIn(t, db, b.ID, u.ID, "2026-06-01", 1)

	if err := db.DeleteBoard(context.Background(), u.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetCheckIn(context.Background(), u.ID, ci.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("check-in survived board deletion: %v", err)
	}
}

func TestListCheckIns_FilterAndOrder(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	b := seedBoard(t, db, u.ID, "Filter")

	seedCheckIn(t, db, b.ID, u.ID, "2026-06-01", 1)
	seedCheckIn(t, db, b.ID, u.ID, "2026-06-02", 1)
	seedCheckIn(t, db, b.ID, u.ID, "2026-06-02", 2)
	seedCheckIn(t, db, b.ID, u.ID, "2026-06-05", 1)

	all, err := db.ListCheckIns(context.Background(), b.ID, CheckInFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("all = %d, want 4", len(all))
	}
	// Newest date first, later sessions first within a date.
	if all[0].Date != "2026-06-05" || all[1].SessionNumber != 2 || all[2].SessionNumber != 1 {
		t.Errorf("ordering wrong: %+v", all)
	}

	ranged, err := db.ListCheckIns(context.Background(), b.ID, CheckInFilter{StartDate: "2026-06-02", EndDate: "2026-06-04"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ranged) != 2 {
		t.Errorf("ranged = %d, want 2", len(ranged))
	}

	limited, err := db.ListCheckIns(context.Background(), b.ID, CheckInFilter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].Date != "2026-06-05" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestDistinctDates_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	b := seedBoard(t, db, u.ID, "Dates")

	seedCheckIn(t, db, b.ID, u.ID, "2026-06-01", 1)
	seedCheckIn(t, db, b.ID, u.ID, "2026-06-03", 1)
	seedCheckIn(t, db, b.ID, u.ID, "2026-06-03", 2)

	dates, err := db.DistinctDates(context.Background(), b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 2 || dates[0] != "2026-06-03" || dates[1] != "2026-06-01" {
		t.Errorf("dates = %v", dates)
	}
}

func TestRevokeAPIKey(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	now := time.Now().UTC()
	k := &models.APIKey{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Name:      "ci",
		KeyHash:   "hash",
		KeyPrefix: "chk_test_abc",
		Scopes:    []string{models.ScopeRead},
		CreatedAt: now,
	}
	if err := db.CreateAPIKey(context.Background(), k); err != nil {
		t.Fatal(err)
	}

	if err := db.RevokeAPIKey(context.Background(), u.ID, k.ID, now); err != nil {
		t.Fatal(err)
	}
	// Revoked keys are invisible to the hash lookup.
	if _, err := db.GetAPIKeyByHash(context.Background(), k.KeyPrefix, k.KeyHash); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	// But they still show in the listing, marked revoked.
	keys, err := db.ListAPIKeys(context.Background(), u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || !keys[0].IsRevoked || keys[0].RevokedAt == nil {
		t.Errorf("keys = %+v", keys)
	}

	if err := db.RevokeAPIKey(context.Background(), u.ID, "missing", now); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("revoking unknown key: err = %v, want ErrNotFound", err)
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	b := seedBoard(t, db, u.ID, "Rollback")

	sentinel := errors.New("boom")
	err := db.InTx(context.Background(), func(tx Tx) error {
		ci := &models.CheckIn{
			ID: uuid.NewString(), BoardID: b.ID, UserID: u.ID, Date: "2026-06-01",
			Timestamp: time.Now(), SessionNumber: 1, CreatedAt: time.Now(),
		}
		if err := tx.InsertCheckIn(ci); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}

	n, err := db.HasCheckInOn(context.Background(), b.ID, "2026-06-01")
	if err != nil {
		t.Fatal(err)
	}
	if n {
		t.Error("insert survived a rolled-back transaction")
	}
}
