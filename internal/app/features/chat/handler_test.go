package chat

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	chatstore "github.com/colabhub/colabhub/internal/app/store/chat"
	collabstore "github.com/colabhub/colabhub/internal/app/store/collaborations"
	projectstore "github.com/colabhub/colabhub/internal/app/store/projects"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/colabhub/colabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(db *mongo.Database) *Handler {
	return NewHandler(chatstore.New(db), projectstore.New(db), collabstore.New(db), zap.NewNop())
}

func TestChat_MembersOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Dueña", "duena@inacapmail.cl", models.RoleStudent)
	member := fx.CreateUser(ctx, "Miembro", "miembro@inacapmail.cl", models.RoleStudent)
	outsider := fx.CreateUser(ctx, "Externa", "externa@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto Urbano", owner.ID, models.ProjectActive, 2)
	fx.CreateCollaboration(ctx, p.ID, member.ID, models.CollabAccepted)

	h := newTestHandler(db)

	readAs := func(user testutil.TestUser) int {
		r := testutil.NewRequest(http.MethodGet, "/api/proyectos/"+p.ID.Hex()+"/chat")
		r = testutil.WithChiURLParam(r, "id", p.ID.Hex())
		r = testutil.WithUser(r, user)
		rec := httptest.NewRecorder()
		h.ServeMessages(rec, r)
		return rec.Code
	}

	if code := readAs(testutil.StudentUserWithID(outsider.ID)); code != http.StatusForbidden {
		t.Errorf("outsider read = %d, want 403", code)
	}
	if code := readAs(testutil.StudentUserWithID(owner.ID)); code != http.StatusOK {
		t.Errorf("owner read = %d, want 200", code)
	}
	if code := readAs(testutil.StudentUserWithID(member.ID)); code != http.StatusOK {
		t.Errorf("member read = %d, want 200", code)
	}
	if code := readAs(testutil.AdminUser()); code != http.StatusOK {
		t.Errorf("admin read = %d, want 200", code)
	}
}

func TestHandlePost_AppendsWithAuthorName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Dueña", "duena@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto Urbano", owner.ID, models.ProjectActive, 2)

	h := newTestHandler(db)

	r := testutil.NewJSONRequest(t, http.MethodPost, "/api/proyectos/"+p.ID.Hex()+"/chat",
		map[string]any{"body": "¿Nos juntamos el jueves?"})
	r = testutil.WithChiURLParam(r, "id", p.ID.Hex())
	r = testutil.WithUser(r, testutil.StudentUserWithID(owner.ID))
	rec := httptest.NewRecorder()
	h.HandlePost(rec, r)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.ChatMessage
	testutil.DecodeJSON(t, rec, &got)
	if got.Body != "¿Nos juntamos el jueves?" {
		t.Errorf("body = %q", got.Body)
	}
	if got.AuthorName == "" {
		t.Error("expected the denormalized author name on the message")
	}
}

func TestServeMessages_AfterCursor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Dueña", "duena@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto Urbano", owner.ID, models.ProjectActive, 2)

	store := chatstore.New(db)
	if _, err := store.Append(ctx, p.ID, owner.ID, "Dueña", "antiguo"); err != nil {
		t.Fatalf("append: %v", err)
	}
	cutoff := time.Now().UTC()
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Append(ctx, p.ID, owner.ID, "Dueña", "nuevo"); err != nil {
		t.Fatalf("append: %v", err)
	}

	h := newTestHandler(db)

	r := testutil.NewRequest(http.MethodGet,
		"/api/proyectos/"+p.ID.Hex()+"/chat?after="+strconv.FormatInt(cutoff.UnixMilli(), 10))
	r = testutil.WithChiURLParam(r, "id", p.ID.Hex())
	r = testutil.WithUser(r, testutil.StudentUserWithID(owner.ID))
	rec := httptest.NewRecorder()
	h.ServeMessages(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []models.ChatMessage
	testutil.DecodeJSON(t, rec, &got)
	if len(got) != 1 {
		t.Fatalf("expected only the newer message, got %d", len(got))
	}
	if got[0].Body != "nuevo" {
		t.Errorf("body = %q, want nuevo", got[0].Body)
	}
}

func TestServeMessages_BadAfterParam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Dueña", "duena@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto Urbano", owner.ID, models.ProjectActive, 2)

	h := newTestHandler(db)

	r := testutil.NewRequest(http.MethodGet, "/api/proyectos/"+p.ID.Hex()+"/chat?after=ayer")
	r = testutil.WithChiURLParam(r, "id", p.ID.Hex())
	r = testutil.WithUser(r, testutil.StudentUserWithID(owner.ID))
	rec := httptest.NewRecorder()
	h.ServeMessages(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
