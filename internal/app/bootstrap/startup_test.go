package bootstrap

import (
	"testing"

	userstore "github.com/dalemusser/freightdesk/internal/app/store/users"
	"github.com/dalemusser/freightdesk/internal/testutil"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureBootstrapAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.EnsureIndexes(t, ctx, db)

	deps := DBDeps{MongoDatabase: db}
	if err := ensureBootstrapAdmin(ctx, deps, "root", "first-password", testLogger()); err != nil {
		t.Fatalf("ensureBootstrapAdmin failed: %v", err)
	}

	u, err := userstore.New(db).Authenticate(ctx, "root", "first-password")
	if err != nil {
		t.Fatalf("bootstrap admin cannot sign in: %v", err)
	}
	if u.Role != "admin" {
		t.Errorf("expected role 'admin', got %q", u.Role)
	}
	if u.Status != "active" {
		t.Errorf("expected status 'active', got %q", u.Status)
	}
}

func TestEnsureBootstrapAdmin_LeavesExistingAlone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.EnsureIndexes(t, ctx, db)

	fx := testutil.NewFixtures(t, db)
	existing := fx.CreateUser(ctx, "Dana Driver", "root", "courier", "kept-password")

	deps := DBDeps{MongoDatabase: db}
	if err := ensureBootstrapAdmin(ctx, deps, "root", "other-password", testLogger()); err != nil {
		t.Fatalf("ensureBootstrapAdmin failed: %v", err)
	}

	users := userstore.New(db)
	u, err := users.GetByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.Role != "courier" {
		t.Errorf("existing user's role changed to %q", u.Role)
	}
	if _, err := users.Authenticate(ctx, "root", "kept-password"); err != nil {
		t.Errorf("existing password should still work: %v", err)
	}
	if n, _ := users.Count(ctx); n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestEnsureBootstrapAdmin_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.EnsureIndexes(t, ctx, db)

	deps := DBDeps{MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := ensureBootstrapAdmin(ctx, deps, "root", "first-password", testLogger()); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
	if n, _ := userstore.New(db).Count(ctx); n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}
