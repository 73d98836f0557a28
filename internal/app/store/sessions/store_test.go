package sessions_test

import (
	"testing"
	"time"

	"github.com/meroket/meroket/internal/app/store/sessions"
	"github.com/meroket/meroket/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateClosesPreviousSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()

	first, err := store.Create(ctx, userID, "203.0.113.5", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == primitive.NilObjectID {
		t.Error("expected ID assigned")
	}

	second, err := store.Create(ctx, userID, "203.0.113.5", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a new session record")
	}

	n, err := store.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive: %v", err)
	}
	if n != 1 {
		t.Errorf("active sessions = %d, want 1", n)
	}

	var old sessions.Session
	if err := db.Collection("sessions").FindOne(ctx, bson.M{"_id": first.ID}).Decode(&old); err != nil {
		t.Fatalf("load first session: %v", err)
	}
	if old.EndReason != sessions.EndedByNewLogin {
		t.Errorf("end_reason = %q, want new_login", old.EndReason)
	}
}

func TestCloseRecordsDuration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	sess, err := store.Create(ctx, userID, "203.0.113.5", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Close(ctx, userID, sessions.EndedByLogout); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var got sessions.Session
	if err := db.Collection("sessions").FindOne(ctx, bson.M{"_id": sess.ID}).Decode(&got); err != nil {
		t.Fatalf("load session: %v", err)
	}
	if got.LogoutAt == nil {
		t.Fatal("logout_at not set")
	}
	if got.EndReason != sessions.EndedByLogout {
		t.Errorf("end_reason = %q", got.EndReason)
	}

	// Closing again with no open session is a no-op.
	if err := store.Close(ctx, userID, sessions.EndedByLogout); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestCloseInactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	stale := primitive.NewObjectID()
	fresh := primitive.NewObjectID()

	staleSess, err := store.Create(ctx, stale, "203.0.113.5", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, fresh, "203.0.113.6", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Backdate the stale session's activity.
	old := time.Now().UTC().Add(-time.Hour)
	if _, err := db.Collection("sessions").UpdateOne(ctx,
		bson.M{"_id": staleSess.ID},
		bson.M{"$set": bson.M{"last_active_at": old}}); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	count, err := store.CloseInactive(ctx, 10*time.Minute)
	if err != nil {
		t.Fatalf("CloseInactive: %v", err)
	}
	if count != 1 {
		t.Errorf("closed = %d, want 1", count)
	}

	n, _ := store.CountActive(ctx)
	if n != 1 {
		t.Errorf("active = %d, want 1", n)
	}
}

func TestHistoryMostRecentFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, userID, "203.0.113.5", ""); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	hist, err := store.History(ctx, userID, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history = %d, want 2 (limit)", len(hist))
	}
	if hist[0].LoginAt.Before(hist[1].LoginAt) {
		t.Error("history not sorted most recent first")
	}
}
