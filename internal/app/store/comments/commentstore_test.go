package commentstore_test

import (
	"errors"
	"testing"
	"time"

	commentstore "github.com/colabhub/colabhub/internal/app/store/comments"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/colabhub/colabhub/internal/testutil"
)

func TestListForProject_AscendingOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Dueño", "owner@inacapmail.cl", models.RoleStudent)
	project := fx.CreateProject(ctx, "Huerto", owner.ID, models.ProjectActive, 3)

	first, err := store.Create(ctx, project.ID, owner.ID, "primero")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := store.Create(ctx, project.ID, owner.ID, "segundo")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.ListForProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Error("comments not in ascending creation order")
	}
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Dueño", "owner@inacapmail.cl", models.RoleStudent)
	project := fx.CreateProject(ctx, "Huerto", owner.ID, models.ProjectActive, 3)
	c := fx.CreateComment(ctx, project.ID, owner.ID, "hola")

	if err := store.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, c.ID); !errors.Is(err, commentstore.ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}

	n, err := store.CountForProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d", n)
	}
}
