package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user with the given name, email, and role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string, role models.Role) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		AuthMethod: "password",
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateProject inserts a test project owned by creatorID.
func (f *Fixtures) CreateProject(ctx context.Context, title string, creatorID primitive.ObjectID, status models.ProjectStatus, capacity int) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:                  primitive.NewObjectID(),
		Title:               title,
		Description:         "Proyecto de prueba",
		CreatorID:           creatorID,
		Status:              status,
		CollaboratorsNeeded: capacity,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

// CreateCollaboration inserts a collaboration request in the given state.
func (f *Fixtures) CreateCollaboration(ctx context.Context, projectID, userID primitive.ObjectID, status models.CollaborationStatus) models.Collaboration {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Collaboration{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		Status:    status,
		Role:      models.CollabRoleCollaborator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("collaborations").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test collaboration: %v", err)
	}
	return c
}

// CreateComment inserts a comment by authorID on projectID.
func (f *Fixtures) CreateComment(ctx context.Context, projectID, authorID primitive.ObjectID, content string) models.Comment {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Comment{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("comments").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test comment: %v", err)
	}
	return c
}

// CreateDiscipline inserts a catalog discipline.
func (f *Fixtures) CreateDiscipline(ctx context.Context, name string) models.Discipline {
	f.t.Helper()

	d := models.Discipline{
		ID:     primitive.NewObjectID(),
		Name:   name,
		NameCI: text.Fold(name),
	}
	if _, err := f.db.Collection("disciplines").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("failed to create test discipline: %v", err)
	}
	return d
}

// CreateSkill inserts a catalog skill.
func (f *Fixtures) CreateSkill(ctx context.Context, name string) models.Skill {
	f.t.Helper()

	s := models.Skill{
		ID:     primitive.NewObjectID(),
		Name:   name,
		NameCI: text.Fold(name),
	}
	if _, err := f.db.Collection("skills").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test skill: %v", err)
	}
	return s
}
