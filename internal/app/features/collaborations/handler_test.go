package collaborations

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	collabstore "github.com/colabhub/colabhub/internal/app/store/collaborations"
	projectstore "github.com/colabhub/colabhub/internal/app/store/projects"
	userstore "github.com/colabhub/colabhub/internal/app/store/users"
	"github.com/colabhub/colabhub/internal/app/system/mailer"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/colabhub/colabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type chanSender struct {
	sent chan mailer.Email
}

func newChanSender() *chanSender {
	return &chanSender{sent: make(chan mailer.Email, 4)}
}

func (s *chanSender) Send(e mailer.Email) error {
	s.sent <- e
	return nil
}

func newTestHandler(db *mongo.Database, mail mailer.Sender) *Handler {
	return NewHandler(
		collabstore.New(db),
		projectstore.New(db),
		userstore.New(db),
		mail,
		zap.NewNop(),
		"ColabHub", "http://localhost:3000",
	)
}

func TestHandleAccept_ResolvesAndNotifies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Dueña", "duena@inacapmail.cl", models.RoleStudent)
	applicant := fx.CreateUser(ctx, "Postulante", "postulante@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto Urbano", owner.ID, models.ProjectActive, 2)
	c := fx.CreateCollaboration(ctx, p.ID, applicant.ID, models.CollabPending)

	mail := newChanSender()
	h := newTestHandler(db, mail)

	r := testutil.NewJSONRequest(t, http.MethodPost, "/api/colaboraciones/"+c.ID.Hex()+"/aceptar",
		map[string]any{"response": "Bienvenida al equipo."})
	r = testutil.WithChiURLParam(r, "id", c.ID.Hex())
	r = testutil.WithUser(r, testutil.StudentUserWithID(owner.ID))
	rec := httptest.NewRecorder()
	h.HandleAccept(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Collaboration
	testutil.DecodeJSON(t, rec, &got)
	if got.Status != models.CollabAccepted {
		t.Errorf("status = %q, want accepted", got.Status)
	}
	if got.Response != "Bienvenida al equipo." {
		t.Errorf("response = %q", got.Response)
	}

	select {
	case email := <-mail.sent:
		if email.To != applicant.Email {
			t.Errorf("decision mail sent to %q, want %q", email.To, applicant.Email)
		}
	case <-time.After(2 * time.Second):
		t.Error("expected a decision email to the applicant")
	}
}

func TestHandleAccept_FullProjectConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Dueña", "duena@inacapmail.cl", models.RoleStudent)
	member := fx.CreateUser(ctx, "Miembro", "miembro@inacapmail.cl", models.RoleStudent)
	applicant := fx.CreateUser(ctx, "Postulante", "postulante@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto Urbano", owner.ID, models.ProjectActive, 1)
	fx.CreateCollaboration(ctx, p.ID, member.ID, models.CollabAccepted)
	c := fx.CreateCollaboration(ctx, p.ID, applicant.ID, models.CollabPending)

	h := newTestHandler(db, nil)

	r := testutil.NewJSONRequest(t, http.MethodPost, "/api/colaboraciones/"+c.ID.Hex()+"/aceptar", map[string]any{})
	r = testutil.WithChiURLParam(r, "id", c.ID.Hex())
	r = testutil.WithUser(r, testutil.StudentUserWithID(owner.ID))
	rec := httptest.NewRecorder()
	h.HandleAccept(rec, r)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a full project, got %d: %s", rec.Code, rec.Body.String())
	}

	// The refused accept must leave the request pending.
	reloaded, err := collabstore.New(db).GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if reloaded.Status != models.CollabPending {
		t.Errorf("status after refused accept = %q, want pending", reloaded.Status)
	}
}

func TestHandleAccept_NonOwnerForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Dueña", "duena@inacapmail.cl", models.RoleStudent)
	applicant := fx.CreateUser(ctx, "Postulante", "postulante@inacapmail.cl", models.RoleStudent)
	intruder := fx.CreateUser(ctx, "Intruso", "intruso@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto Urbano", owner.ID, models.ProjectActive, 2)
	c := fx.CreateCollaboration(ctx, p.ID, applicant.ID, models.CollabPending)

	h := newTestHandler(db, nil)

	r := testutil.NewJSONRequest(t, http.MethodPost, "/api/colaboraciones/"+c.ID.Hex()+"/aceptar", map[string]any{})
	r = testutil.WithChiURLParam(r, "id", c.ID.Hex())
	r = testutil.WithUser(r, testutil.StudentUserWithID(intruder.ID))
	rec := httptest.NewRecorder()
	h.HandleAccept(rec, r)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandleReject_AlreadyResolvedConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Dueña", "duena@inacapmail.cl", models.RoleStudent)
	applicant := fx.CreateUser(ctx, "Postulante", "postulante@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto Urbano", owner.ID, models.ProjectActive, 2)
	c := fx.CreateCollaboration(ctx, p.ID, applicant.ID, models.CollabRejected)

	h := newTestHandler(db, nil)

	r := testutil.NewJSONRequest(t, http.MethodPost, "/api/colaboraciones/"+c.ID.Hex()+"/rechazar", map[string]any{})
	r = testutil.WithChiURLParam(r, "id", c.ID.Hex())
	r = testutil.WithUser(r, testutil.StudentUserWithID(owner.ID))
	rec := httptest.NewRecorder()
	h.HandleReject(rec, r)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for an already resolved request, got %d", rec.Code)
	}
}

func TestHandleCancel_OnlyApplicant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Dueña", "duena@inacapmail.cl", models.RoleStudent)
	applicant := fx.CreateUser(ctx, "Postulante", "postulante@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto Urbano", owner.ID, models.ProjectActive, 2)
	c := fx.CreateCollaboration(ctx, p.ID, applicant.ID, models.CollabPending)

	h := newTestHandler(db, nil)

	// The owner cannot cancel the applicant's request.
	r := testutil.NewRequest(http.MethodPost, "/api/colaboraciones/"+c.ID.Hex()+"/cancelar")
	r = testutil.WithChiURLParam(r, "id", c.ID.Hex())
	r = testutil.WithUser(r, testutil.StudentUserWithID(owner.ID))
	rec := httptest.NewRecorder()
	h.HandleCancel(rec, r)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-applicant, got %d", rec.Code)
	}

	// The applicant can.
	r = testutil.NewRequest(http.MethodPost, "/api/colaboraciones/"+c.ID.Hex()+"/cancelar")
	r = testutil.WithChiURLParam(r, "id", c.ID.Hex())
	r = testutil.WithUser(r, testutil.StudentUserWithID(applicant.ID))
	rec = httptest.NewRecorder()
	h.HandleCancel(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Collaboration
	testutil.DecodeJSON(t, rec, &got)
	if got.Status != models.CollabCancelled {
		t.Errorf("status = %q, want cancelled", got.Status)
	}
}

func TestServeMine_HydratesProjectTitles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Dueña", "duena@inacapmail.cl", models.RoleStudent)
	applicant := fx.CreateUser(ctx, "Postulante", "postulante@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto Urbano", owner.ID, models.ProjectActive, 2)
	fx.CreateCollaboration(ctx, p.ID, applicant.ID, models.CollabPending)

	h := newTestHandler(db, nil)

	r := testutil.NewRequest(http.MethodGet, "/api/colaboraciones/mis_solicitudes")
	r = testutil.WithUser(r, testutil.StudentUserWithID(applicant.ID))
	rec := httptest.NewRecorder()
	h.ServeMine(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []requestView
	testutil.DecodeJSON(t, rec, &got)
	if len(got) != 1 {
		t.Fatalf("expected 1 request, got %d", len(got))
	}
	if got[0].ProjectTitle != "Huerto Urbano" {
		t.Errorf("project_title = %q, want Huerto Urbano", got[0].ProjectTitle)
	}
}
