package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogstore "github.com/colabhub/colabhub/internal/app/store/catalog"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/colabhub/colabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func uniqueNameIndex(ctx context.Context, db *mongo.Database, coll string) error {
	_, err := db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name_ci", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_" + coll + "_name_ci"),
	})
	return err
}

func TestServeDisciplines_SortedByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateDiscipline(ctx, "Mecánica")
	fx.CreateDiscipline(ctx, "Agronomía")

	h := NewHandler(catalogstore.New(db), zap.NewNop())

	r := testutil.NewRequest(http.MethodGet, "/api/disciplinas")
	rec := httptest.NewRecorder()
	h.ServeDisciplines(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []models.Discipline
	testutil.DecodeJSON(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("expected 2 disciplines, got %d", len(got))
	}
	if got[0].Name != "Agronomía" {
		t.Errorf("expected name-sorted list, first was %q", got[0].Name)
	}
}

func TestHandleCreateSkill_DuplicateConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// The duplicate guard relies on the unique folded-name index.
	if err := uniqueNameIndex(ctx, db, "skills"); err != nil {
		t.Fatalf("create index: %v", err)
	}

	h := NewHandler(catalogstore.New(db), zap.NewNop())

	create := func(name string) int {
		r := testutil.NewJSONRequest(t, http.MethodPost, "/api/habilidades", map[string]any{"name": name})
		r = testutil.WithUser(r, testutil.AdminUser())
		rec := httptest.NewRecorder()
		h.HandleCreateSkill(rec, r)
		return rec.Code
	}

	if code := create("Soldadura"); code != http.StatusCreated {
		t.Fatalf("first create = %d, want 201", code)
	}
	// Same name with different casing and diacritics still collides.
	if code := create("SOLDADURA"); code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", code)
	}
}

func TestHandleCreateDiscipline_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, cancel := testutil.TestContext()
	defer cancel()

	h := NewHandler(catalogstore.New(db), zap.NewNop())

	r := testutil.NewJSONRequest(t, http.MethodPost, "/api/disciplinas", map[string]any{"name": "x"})
	r = testutil.WithUser(r, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleCreateDiscipline(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a one-letter name, got %d", rec.Code)
	}
}
