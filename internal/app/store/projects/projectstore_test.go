package projectstore_test

import (
	"errors"
	"testing"

	projectstore "github.com/colabhub/colabhub/internal/app/store/projects"
	"github.com/colabhub/colabhub/internal/app/system/paging"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/colabhub/colabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_DefaultsAndValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Dueño", "owner@inacapmail.cl", models.RoleStudent)

	p, err := store.Create(ctx, models.Project{
		Title:               "  Robot Sigue-Líneas  ",
		Description:         "Robot para competencia",
		CreatorID:           owner.ID,
		CollaboratorsNeeded: 2,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Title != "Robot Sigue-Líneas" {
		t.Errorf("title not trimmed: %q", p.Title)
	}
	if p.TitleCI == "" || p.TitleCI == p.Title {
		t.Errorf("title_ci not folded: %q", p.TitleCI)
	}
	if p.Status != models.ProjectDraft {
		t.Errorf("status default = %q", p.Status)
	}

	if _, err := store.Create(ctx, models.Project{Title: "x", CreatorID: owner.ID}); err == nil {
		t.Error("zero capacity should be rejected")
	}
}

func TestApply_PartialMerge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Dueño", "owner@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto", owner.ID, models.ProjectActive, 3)

	status := models.ProjectInProgress
	if err := store.Apply(ctx, p.ID, projectstore.Update{Status: &status}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.ProjectInProgress {
		t.Errorf("status = %q", got.Status)
	}
	if got.Title != "Huerto" || got.CollaboratorsNeeded != 3 {
		t.Error("partial update touched unrelated fields")
	}
}

func TestApply_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	title := "x"
	err := store.Apply(ctx, primitive.NewObjectID(), projectstore.Update{Title: &title})
	if !errors.Is(err, projectstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateUser(ctx, "A", "a@inacapmail.cl", models.RoleStudent)
	b := fx.CreateUser(ctx, "B", "b@inacapmail.cl", models.RoleStudent)

	fx.CreateProject(ctx, "Huerto Urbano", a.ID, models.ProjectActive, 3)
	fx.CreateProject(ctx, "Robot", b.ID, models.ProjectDraft, 2)

	active, err := store.List(ctx, projectstore.ListFilter{Status: models.ProjectActive}, paging.Params{Page: 1, Size: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 1 || active[0].Title != "Huerto Urbano" {
		t.Errorf("active = %+v", active)
	}

	mine, err := store.List(ctx, projectstore.ListFilter{CreatorID: &b.ID}, paging.Params{Page: 1, Size: 20})
	if err != nil {
		t.Fatalf("List by creator: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "Robot" {
		t.Errorf("mine = %+v", mine)
	}

	// Folded prefix search.
	found, err := store.List(ctx, projectstore.ListFilter{Search: "huerto"}, paging.Params{Page: 1, Size: 20})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("search hits = %d", len(found))
	}
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Dueño", "owner@inacapmail.cl", models.RoleStudent)
	p := fx.CreateProject(ctx, "Huerto", owner.ID, models.ProjectActive, 3)

	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, p.ID); !errors.Is(err, projectstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, p.ID); !errors.Is(err, projectstore.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}
