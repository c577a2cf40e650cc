package projectpolicy_test

import (
	"testing"

	"github.com/colabhub/colabhub/internal/app/policy/projectpolicy"
	"github.com/colabhub/colabhub/internal/app/system/authz"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/colabhub/colabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanEdit_UnknownUntilProjectLoads(t *testing.T) {
	r := testutil.WithUser(testutil.NewRequest("GET", "/api/proyectos/x"), testutil.StudentUser())

	got := projectpolicy.CanEdit(r, nil)
	if got != authz.Unknown {
		t.Errorf("decision = %v, want Unknown", got)
	}
	if got == authz.Denied {
		t.Error("missing project must not read as Denied")
	}
}

func TestCanEdit_OwnerAllowed(t *testing.T) {
	ownerID := primitive.NewObjectID()
	p := &models.Project{ID: primitive.NewObjectID(), CreatorID: ownerID}

	r := testutil.WithUser(testutil.NewRequest("GET", "/api/proyectos/x"),
		testutil.StudentUserWithID(ownerID))

	if got := projectpolicy.CanEdit(r, p); got != authz.Allowed {
		t.Errorf("owner decision = %v, want Allowed", got)
	}
}

func TestCanEdit_StrangerDenied(t *testing.T) {
	p := &models.Project{ID: primitive.NewObjectID(), CreatorID: primitive.NewObjectID()}

	r := testutil.WithUser(testutil.NewRequest("GET", "/api/proyectos/x"), testutil.StudentUser())

	if got := projectpolicy.CanEdit(r, p); got != authz.Denied {
		t.Errorf("stranger decision = %v, want Denied", got)
	}
}

func TestCanEdit_AdministratorAllowed(t *testing.T) {
	p := &models.Project{ID: primitive.NewObjectID(), CreatorID: primitive.NewObjectID()}

	r := testutil.WithUser(testutil.NewRequest("GET", "/api/proyectos/x"), testutil.AdminUser())

	if got := projectpolicy.CanEdit(r, p); got != authz.Allowed {
		t.Errorf("admin decision = %v, want Allowed", got)
	}
}

func TestCanEdit_AnonymousDenied(t *testing.T) {
	p := &models.Project{ID: primitive.NewObjectID(), CreatorID: primitive.NewObjectID()}

	if got := projectpolicy.CanEdit(testutil.NewRequest("GET", "/api/proyectos/x"), p); got != authz.Denied {
		t.Errorf("anonymous decision = %v, want Denied", got)
	}
}

func TestCanViewRequests_OnlyOwnerOrAdmin(t *testing.T) {
	ownerID := primitive.NewObjectID()
	p := &models.Project{ID: primitive.NewObjectID(), CreatorID: ownerID}

	owner := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUserWithID(ownerID))
	if got := projectpolicy.CanViewRequests(owner, p); got != authz.Allowed {
		t.Errorf("owner = %v", got)
	}

	stranger := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUser())
	if got := projectpolicy.CanViewRequests(stranger, p); got != authz.Denied {
		t.Errorf("stranger = %v", got)
	}
}

func TestCanViewChat_MembershipMatters(t *testing.T) {
	p := &models.Project{ID: primitive.NewObjectID(), CreatorID: primitive.NewObjectID()}

	member := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUser())
	if got := projectpolicy.CanViewChat(member, p, true); got != authz.Allowed {
		t.Errorf("member = %v", got)
	}
	if got := projectpolicy.CanViewChat(member, p, false); got != authz.Denied {
		t.Errorf("non-member = %v", got)
	}
}
