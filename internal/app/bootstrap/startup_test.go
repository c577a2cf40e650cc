package bootstrap

import (
	"testing"

	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/colabhub/colabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}

	if err := ensureAdmin(ctx, deps, "admin@inacapmail.cl", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"email": "admin@inacapmail.cl"}).Decode(&user); err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}
	if user.Role != models.RoleAdministrator {
		t.Errorf("expected role %q, got %q", models.RoleAdministrator, user.Role)
	}
	if user.AuthMethod != "google" {
		t.Errorf("expected auth method google, got %q", user.AuthMethod)
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	existing := fx.CreateUser(ctx, "Valentina Rojas", "valentina@inacapmail.cl", models.RoleStudent)

	deps := DBDeps{MongoDatabase: db}
	if err := ensureAdmin(ctx, deps, "valentina@inacapmail.cl", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user); err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if user.Role != models.RoleAdministrator {
		t.Errorf("expected promotion to administrator, got %q", user.Role)
	}
	if user.FullName != "Valentina Rojas" {
		t.Errorf("promotion must not touch other fields, full name became %q", user.FullName)
	}
}

func TestEnsureAdmin_AlreadyAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateUser(ctx, "Admin", "jefa@inacapmail.cl", models.RoleAdministrator)

	deps := DBDeps{MongoDatabase: db}
	if err := ensureAdmin(ctx, deps, "jefa@inacapmail.cl", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}
}
