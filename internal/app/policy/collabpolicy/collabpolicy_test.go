package collabpolicy_test

import (
	"testing"

	"github.com/colabhub/colabhub/internal/app/policy/collabpolicy"
	"github.com/colabhub/colabhub/internal/app/system/authz"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/colabhub/colabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func activeProject(capacity int) *models.Project {
	return &models.Project{
		ID:                  primitive.NewObjectID(),
		CreatorID:           primitive.NewObjectID(),
		Status:              models.ProjectActive,
		CollaboratorsNeeded: capacity,
	}
}

func TestCanApply_UnknownWithoutProject(t *testing.T) {
	r := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUser())
	if got := collabpolicy.CanApply(r, nil, collabpolicy.ApplicantState{}); got != authz.Unknown {
		t.Errorf("decision = %v, want Unknown", got)
	}
}

func TestCanApply_HappyPath(t *testing.T) {
	p := activeProject(3)
	r := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUser())

	got := collabpolicy.CanApply(r, p, collabpolicy.ApplicantState{AcceptedCount: 1})
	if got != authz.Allowed {
		t.Errorf("decision = %v, want Allowed", got)
	}
}

func TestCanApply_OwnerDenied(t *testing.T) {
	p := activeProject(3)
	r := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUserWithID(p.CreatorID))

	if got := collabpolicy.CanApply(r, p, collabpolicy.ApplicantState{}); got != authz.Denied {
		t.Errorf("owner = %v, want Denied", got)
	}
}

func TestCanApply_FullDenied(t *testing.T) {
	p := activeProject(2)
	r := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUser())

	if got := collabpolicy.CanApply(r, p, collabpolicy.ApplicantState{AcceptedCount: 2}); got != authz.Denied {
		t.Errorf("full project = %v, want Denied", got)
	}
}

func TestCanApply_PendingOrMemberDenied(t *testing.T) {
	p := activeProject(3)
	r := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUser())

	if got := collabpolicy.CanApply(r, p, collabpolicy.ApplicantState{HasPending: true}); got != authz.Denied {
		t.Errorf("pending = %v, want Denied", got)
	}
	if got := collabpolicy.CanApply(r, p, collabpolicy.ApplicantState{IsMember: true}); got != authz.Denied {
		t.Errorf("member = %v, want Denied", got)
	}
}

func TestCanApply_InactiveProjectDenied(t *testing.T) {
	p := activeProject(3)
	p.Status = models.ProjectCompleted
	r := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUser())

	if got := collabpolicy.CanApply(r, p, collabpolicy.ApplicantState{}); got != authz.Denied {
		t.Errorf("completed project = %v, want Denied", got)
	}
}

func TestCanResolve_OwnerAndAdminOnly(t *testing.T) {
	p := activeProject(3)
	c := &models.Collaboration{ID: primitive.NewObjectID(), ProjectID: p.ID, Status: models.CollabPending}

	owner := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUserWithID(p.CreatorID))
	if got := collabpolicy.CanResolve(owner, p, c); got != authz.Allowed {
		t.Errorf("owner = %v", got)
	}

	admin := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.AdminUser())
	if got := collabpolicy.CanResolve(admin, p, c); got != authz.Allowed {
		t.Errorf("admin = %v", got)
	}

	stranger := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUser())
	if got := collabpolicy.CanResolve(stranger, p, c); got != authz.Denied {
		t.Errorf("stranger = %v", got)
	}
}

func TestCanResolve_MismatchedProjectDenied(t *testing.T) {
	p := activeProject(3)
	c := &models.Collaboration{ID: primitive.NewObjectID(), ProjectID: primitive.NewObjectID()}

	owner := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUserWithID(p.CreatorID))
	if got := collabpolicy.CanResolve(owner, p, c); got != authz.Denied {
		t.Errorf("cross-project resolve = %v, want Denied", got)
	}
}

func TestCanCancel(t *testing.T) {
	applicantID := primitive.NewObjectID()
	c := &models.Collaboration{
		ID:     primitive.NewObjectID(),
		UserID: applicantID,
		Status: models.CollabPending,
	}

	applicant := testutil.WithUser(testutil.NewRequest("GET", "/x"), testutil.StudentUserWithID(applicantID))
	if got := collabpolicy.CanCancel(applicant, c); got != authz.Allowed {
		t.Errorf("applicant = %v", got)
	}

	c.Status = models.CollabAccepted
	if got := collabpolicy.CanCancel(applicant, c); got != authz.Denied {
		t.Errorf("resolved request = %v, want Denied", got)
	}
}

func TestTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to models.CollaborationStatus
		want     bool
	}{
		{models.CollabPending, models.CollabAccepted, true},
		{models.CollabPending, models.CollabRejected, true},
		{models.CollabPending, models.CollabCancelled, true},
		{models.CollabAccepted, models.CollabRejected, false},
		{models.CollabRejected, models.CollabAccepted, false},
		{models.CollabPending, models.CollabPending, false},
	}
	for _, tc := range cases {
		if got := collabpolicy.TransitionAllowed(tc.from, tc.to); got != tc.want {
			t.Errorf("TransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
