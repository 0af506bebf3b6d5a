package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/watools/internal/adapters/sqlite"
	"github.com/example/watools/internal/ports/secondary"
)

func intPtr(v int) *int { return &v }

func sampleContacts() []*secondary.ContactRecord {
	return []*secondary.ContactRecord{
		{
			ID:                  1,
			DisplayName:         "Ada Lovelace",
			MembershipLevelID:   intPtr(10),
			MembershipLevelName: "Gold",
			Status:              "Active",
		},
		{
			ID:          2,
			DisplayName: "Friend Of Club",
			FieldValues: []secondary.FieldValueItem{
				{FieldName: "Group participation", SystemCode: "Groups", RefIDs: []int{7, 8}},
			},
		},
	}
}

func TestContactCacheRepository_SaveAndLoad(t *testing.T) {
	clock := newFakeClock()
	repo := sqlite.NewContactCacheRepository(setupTestDB(t)).WithClock(clock.Now)
	ctx := context.Background()

	if err := repo.Save(ctx, 100, sampleContacts()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	clock.Advance(30 * time.Minute)
	contacts, ok, err := repo.Load(ctx, 100, time.Hour)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(contacts))
	}
	if contacts[0].MembershipLevelID == nil || *contacts[0].MembershipLevelID != 10 {
		t.Errorf("membership level not preserved: %+v", contacts[0])
	}
	if got := contacts[1].FieldValues[0].RefIDs; len(got) != 2 || got[1] != 8 {
		t.Errorf("group refs not preserved: %v", got)
	}
}

func TestContactCacheRepository_Expired(t *testing.T) {
	clock := newFakeClock()
	repo := sqlite.NewContactCacheRepository(setupTestDB(t)).WithClock(clock.Now)
	ctx := context.Background()

	if err := repo.Save(ctx, 100, sampleContacts()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	clock.Advance(time.Hour)
	_, ok, err := repo.Load(ctx, 100, time.Hour)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Error("expected stale entry to miss")
	}
}

func TestContactCacheRepository_MissAndOtherAccount(t *testing.T) {
	repo := sqlite.NewContactCacheRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, 100, sampleContacts()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, ok, err := repo.Load(ctx, 200, time.Hour)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Error("expected miss for uncached account")
	}
}

func TestContactCacheRepository_SaveReplaces(t *testing.T) {
	repo := sqlite.NewContactCacheRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, 100, sampleContacts()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, 100, sampleContacts()[:1]); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	contacts, ok, err := repo.Load(ctx, 100, time.Hour)
	if err != nil || !ok {
		t.Fatalf("Load failed: ok=%v err=%v", ok, err)
	}
	if len(contacts) != 1 {
		t.Errorf("expected replaced list of 1, got %d", len(contacts))
	}
}

func TestContactCacheRepository_Clear(t *testing.T) {
	repo := sqlite.NewContactCacheRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, 100, sampleContacts()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Clear(ctx, 100); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	_, ok, err := repo.Load(ctx, 100, time.Hour)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Error("expected miss after Clear")
	}

	// clearing an empty cache is not an error
	if err := repo.Clear(ctx, 100); err != nil {
		t.Errorf("second Clear failed: %v", err)
	}
}
