package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/colabhub/colabhub/internal/app/system/normalize"
	"github.com/colabhub/colabhub/internal/app/system/paging"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

var (
	// ErrNotFound is returned by targeted updates and deletes when no
	// document matched.
	ErrNotFound = errors.New("project not found")

	errBadStatus   = errors.New("unknown project status")
	errBadCapacity = errors.New("collaborators_needed must be at least 1")
)

// Create inserts a new project after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	p.ID = primitive.NewObjectID()
	p.Title = normalize.Name(p.Title)
	p.TitleCI = text.Fold(p.Title)
	if p.Status == "" {
		p.Status = models.ProjectDraft
	}
	if !models.ValidProjectStatus(p.Status) {
		return models.Project{}, errBadStatus
	}
	if p.CollaboratorsNeeded < 1 {
		return models.Project{}, errBadCapacity
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// GetByID loads a project by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update holds the fields an owner can change on a project. Nil pointers
// mean "leave unchanged" so the write never clobbers absent fields.
type Update struct {
	Title               *string
	Description         *string
	Objective           *string
	ImageURL            *string
	Status              *models.ProjectStatus
	CollaboratorsNeeded *int
	DisciplineIDs       []primitive.ObjectID
	SetDisciplines      bool
	SkillIDs            []primitive.ObjectID
	SetSkills           bool
	StartDate           *time.Time
	EndDate             *time.Time
}

// Apply merge-writes the provided fields onto the project.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}

	if upd.Title != nil {
		title := normalize.Name(*upd.Title)
		set["title"] = title
		set["title_ci"] = text.Fold(title)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Objective != nil {
		set["objective"] = *upd.Objective
	}
	if upd.ImageURL != nil {
		set["image_url"] = *upd.ImageURL
	}
	if upd.Status != nil {
		if !models.ValidProjectStatus(*upd.Status) {
			return errBadStatus
		}
		set["status"] = *upd.Status
	}
	if upd.CollaboratorsNeeded != nil {
		if *upd.CollaboratorsNeeded < 1 {
			return errBadCapacity
		}
		set["collaborators_needed"] = *upd.CollaboratorsNeeded
	}
	if upd.SetDisciplines {
		set["discipline_ids"] = upd.DisciplineIDs
	}
	if upd.SetSkills {
		set["skill_ids"] = upd.SkillIDs
	}
	if upd.StartDate != nil {
		set["start_date"] = *upd.StartDate
	}
	if upd.EndDate != nil {
		set["end_date"] = *upd.EndDate
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a project by ID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFilter narrows the explore listing.
type ListFilter struct {
	Status       models.ProjectStatus // empty means all statuses
	DisciplineID *primitive.ObjectID
	Search       string // folded prefix match on title_ci
	CreatorID    *primitive.ObjectID
}

func (f ListFilter) query() bson.M {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.DisciplineID != nil {
		query["discipline_ids"] = *f.DisciplineID
	}
	if f.Search != "" {
		query["title_ci"] = bson.M{"$regex": "^" + text.Fold(f.Search)}
	}
	if f.CreatorID != nil {
		query["creator_id"] = *f.CreatorID
	}
	return query
}

// List returns projects newest-first.
func (s *Store) List(ctx context.Context, filter ListFilter, page paging.Params) ([]models.Project, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit())

	cur, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Count returns the number of projects matching the filter.
func (s *Store) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.query())
}

// GetMany loads projects for a set of IDs, for hydrating a user's
// collaboration lists. Order is unspecified.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}
