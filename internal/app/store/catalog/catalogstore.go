package catalogstore

import (
	"context"
	"errors"
	"time"

	"github.com/colabhub/colabhub/internal/app/system/normalize"
	"github.com/colabhub/colabhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds the disciplines and skills catalogs. Both are small,
// admin-curated collections read by registration and project forms.
type Store struct {
	disciplines *mongo.Collection
	skills      *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		disciplines: db.Collection("disciplines"),
		skills:      db.Collection("skills"),
	}
}

// ErrDuplicateName is returned when a catalog entry with the same folded
// name already exists.
var ErrDuplicateName = errors.New("an entry with this name already exists")

// CreateDiscipline inserts a discipline.
func (s *Store) CreateDiscipline(ctx context.Context, name, description string) (models.Discipline, error) {
	d := models.Discipline{
		ID:          primitive.NewObjectID(),
		Name:        normalize.Name(name),
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	d.NameCI = text.Fold(d.Name)

	if _, err := s.disciplines.InsertOne(ctx, d); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Discipline{}, ErrDuplicateName
		}
		return models.Discipline{}, err
	}
	return d, nil
}

// CreateSkill inserts a skill.
func (s *Store) CreateSkill(ctx context.Context, name, description string) (models.Skill, error) {
	sk := models.Skill{
		ID:          primitive.NewObjectID(),
		Name:        normalize.Name(name),
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	sk.NameCI = text.Fold(sk.Name)

	if _, err := s.skills.InsertOne(ctx, sk); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Skill{}, ErrDuplicateName
		}
		return models.Skill{}, err
	}
	return sk, nil
}

// ListDisciplines returns all disciplines sorted by folded name.
func (s *Store) ListDisciplines(ctx context.Context) ([]models.Discipline, error) {
	cur, err := s.disciplines.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Discipline
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSkills returns all skills sorted by folded name.
func (s *Store) ListSkills(ctx context.Context) ([]models.Skill, error) {
	cur, err := s.skills.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Skill
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DisciplinesExist reports whether every given ID names a real discipline.
func (s *Store) DisciplinesExist(ctx context.Context, ids []primitive.ObjectID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	n, err := s.disciplines.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return false, err
	}
	return n == int64(len(dedupe(ids))), nil
}

// SkillsExist reports whether every given ID names a real skill.
func (s *Store) SkillsExist(ctx context.Context, ids []primitive.ObjectID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	n, err := s.skills.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return false, err
	}
	return n == int64(len(dedupe(ids))), nil
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
