package collabstore

import (
	"context"
	"errors"
	"time"

	"github.com/colabhub/colabhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("collaborations")}
}

var (
	// ErrDuplicatePending is returned when the user already has a pending
	// request for the project. Enforced by the partial unique index, so the
	// guarantee holds even under concurrent submissions.
	ErrDuplicatePending = errors.New("a pending request already exists for this project")

	// ErrNotFound is returned when no collaboration matched.
	ErrNotFound = errors.New("collaboration not found")

	// ErrNotPending is returned when resolving a request that has already
	// been resolved (for example by a concurrent accept).
	ErrNotPending = errors.New("collaboration is not pending")

	// ErrProjectFull is returned by Accept when the accepted-collaborator
	// count has reached the project's capacity.
	ErrProjectFull = errors.New("project has no vacancies left")
)

// Create inserts a pending request from userID to join projectID.
func (s *Store) Create(ctx context.Context, projectID, userID primitive.ObjectID, message string) (models.Collaboration, error) {
	now := time.Now().UTC()
	c := models.Collaboration{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		Status:    models.CollabPending,
		Role:      models.CollabRoleCollaborator,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Collaboration{}, ErrDuplicatePending
		}
		return models.Collaboration{}, err
	}
	return c, nil
}

// GetByID loads a collaboration by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Collaboration, error) {
	var c models.Collaboration
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Accept resolves a pending request as accepted, re-checking capacity at
// write time. The status filter on the update makes a double accept (two
// admins clicking at once) resolve exactly once.
func (s *Store) Accept(ctx context.Context, id primitive.ObjectID, response string, capacity int) (*models.Collaboration, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != models.CollabPending {
		return nil, ErrNotPending
	}

	accepted, err := s.CountAccepted(ctx, cur.ProjectID)
	if err != nil {
		return nil, err
	}
	if int(accepted) >= capacity {
		return nil, ErrProjectFull
	}

	return s.resolve(ctx, id, models.CollabAccepted, response)
}

// Reject resolves a pending request as rejected.
func (s *Store) Reject(ctx context.Context, id primitive.ObjectID, response string) (*models.Collaboration, error) {
	return s.resolve(ctx, id, models.CollabRejected, response)
}

// CancelOwn lets the applicant withdraw their own pending request.
func (s *Store) CancelOwn(ctx context.Context, id, userID primitive.ObjectID) (*models.Collaboration, error) {
	var c models.Collaboration
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID, "status": models.CollabPending},
		bson.M{"$set": bson.M{"status": models.CollabCancelled, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotPending
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) resolve(ctx context.Context, id primitive.ObjectID, to models.CollaborationStatus, response string) (*models.Collaboration, error) {
	var c models.Collaboration
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.CollabPending},
		bson.M{"$set": bson.M{
			"status":     to,
			"response":   response,
			"updated_at": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Distinguish "gone" from "already resolved" for the handler.
			if _, getErr := s.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrNotPending
		}
		return nil, err
	}
	return &c, nil
}

// ListForProject returns a project's requests, optionally filtered by status,
// newest first.
func (s *Store) ListForProject(ctx context.Context, projectID primitive.ObjectID, status models.CollaborationStatus) ([]models.Collaboration, error) {
	query := bson.M{"project_id": projectID}
	if status != "" {
		query["status"] = status
	}
	return s.find(ctx, query)
}

// ListForUser returns a user's requests across projects, optionally filtered
// by status, newest first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, status models.CollaborationStatus) ([]models.Collaboration, error) {
	query := bson.M{"user_id": userID}
	if status != "" {
		query["status"] = status
	}
	return s.find(ctx, query)
}

func (s *Store) find(ctx context.Context, query bson.M) ([]models.Collaboration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Collaboration
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountAccepted returns the number of accepted collaborations on a project.
// This count is the source of truth for vacancies; it is never stored on
// the project document.
func (s *Store) CountAccepted(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"project_id": projectID, "status": models.CollabAccepted})
}

// CountAcceptedMany returns accepted counts for a page of projects in one
// round trip.
func (s *Store) CountAcceptedMany(ctx context.Context, projectIDs []primitive.ObjectID) (map[primitive.ObjectID]int, error) {
	counts := make(map[primitive.ObjectID]int, len(projectIDs))
	if len(projectIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"project_id": bson.M{"$in": projectIDs},
			"status":     models.CollabAccepted,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": "$project_id",
			"n":   bson.M{"$sum": 1},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ProjectID primitive.ObjectID `bson:"_id"`
			N         int                `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ProjectID] = row.N
	}
	return counts, cur.Err()
}

// HasPending reports whether userID has a pending request on projectID.
func (s *Store) HasPending(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"project_id": projectID,
		"user_id":    userID,
		"status":     models.CollabPending,
	})
	return n > 0, err
}

// IsAcceptedCollaborator reports whether userID is an accepted collaborator
// on projectID.
func (s *Store) IsAcceptedCollaborator(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"project_id": projectID,
		"user_id":    userID,
		"status":     models.CollabAccepted,
	})
	return n > 0, err
}

// AcceptedUserIDs returns the user IDs of accepted collaborators on a project.
func (s *Store) AcceptedUserIDs(ctx context.Context, projectID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"project_id": projectID, "status": models.CollabAccepted},
		options.Find().SetProjection(bson.M{"user_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			UserID primitive.ObjectID `bson:"user_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.UserID)
	}
	return ids, cur.Err()
}

// ProjectIDsForUser returns the projects where the user has a collaboration
// in the given status.
func (s *Store) ProjectIDsForUser(ctx context.Context, userID primitive.ObjectID, status models.CollaborationStatus) ([]primitive.ObjectID, error) {
	query := bson.M{"user_id": userID}
	if status != "" {
		query["status"] = status
	}
	cur, err := s.c.Find(ctx, query, options.Find().SetProjection(bson.M{"project_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ProjectID primitive.ObjectID `bson:"project_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ProjectID)
	}
	return ids, cur.Err()
}

// DeleteForProject removes every collaboration attached to a project, used
// when the project itself is deleted.
func (s *Store) DeleteForProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
