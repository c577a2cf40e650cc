package authz

import (
	"net/http/httptest"
	"testing"

	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/colabhub/colabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_NoUser(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	role, name, id, ok := UserCtx(r)
	if ok {
		t.Fatal("ok should be false without a user")
	}
	if role != models.RoleUnspecified || name != "" || id != primitive.NilObjectID {
		t.Error("zero values expected without a user")
	}
}

func TestUserCtx_MalformedID_FailsClosed(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: "not-a-hex-id", Role: models.RoleStudent})
	if _, _, _, ok := UserCtx(r); ok {
		t.Error("malformed ID must not produce ok=true")
	}
}

func TestUserCtx_Valid(t *testing.T) {
	oid := primitive.NewObjectID()
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: oid.Hex(), Name: "Ana", Role: models.RoleInstructor})

	role, name, id, ok := UserCtx(r)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != models.RoleInstructor || name != "Ana" || id != oid {
		t.Errorf("got (%v, %q, %v)", role, name, id)
	}
}

func TestDecision_UnknownIsNotDenied(t *testing.T) {
	if Unknown == Denied {
		t.Fatal("Unknown and Denied must be distinct states")
	}
	if Unknown.Bool() {
		t.Error("Unknown must not collapse to allowed")
	}
	if Unknown.String() != "unknown" {
		t.Errorf("String() = %q", Unknown.String())
	}
}

func TestOf(t *testing.T) {
	if Of(true) != Allowed || Of(false) != Denied {
		t.Error("Of should map booleans onto Allowed/Denied")
	}
}

func TestSameID_Normalization(t *testing.T) {
	oid := primitive.NewObjectID()
	hex := oid.Hex()

	// Same identity in different representations must compare equal.
	if !SameID(oid, hex) {
		t.Error("ObjectID and its hex string should match")
	}
	if !SameID(hex, oid) {
		t.Error("comparison should be symmetric")
	}
	if !SameID(&oid, hex) {
		t.Error("*ObjectID and hex string should match")
	}

	other := primitive.NewObjectID()
	if SameID(oid, other) {
		t.Error("distinct IDs must not match")
	}

	// Nil/zero values never match anything, including each other.
	if SameID(primitive.NilObjectID, primitive.NilObjectID) {
		t.Error("nil ObjectIDs must not match")
	}
	if SameID(nil, hex) {
		t.Error("nil must not match")
	}
	if SameID("", "") {
		t.Error("empty strings must not match")
	}
}

func TestRolePredicates(t *testing.T) {
	oid := primitive.NewObjectID().Hex()

	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: oid, Role: models.RoleAdministrator})
	if !IsAdministrator(r) || IsStudent(r) || IsInstructor(r) {
		t.Error("administrator predicates wrong")
	}

	r2 := httptest.NewRequest("GET", "/", nil)
	r2 = auth.WithTestUser(r2, &auth.SessionUser{ID: oid, Role: models.RoleStudent})
	if !IsStudent(r2) || IsAdministrator(r2) {
		t.Error("student predicates wrong")
	}
}
