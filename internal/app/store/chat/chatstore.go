package chatstore

import (
	"context"
	"time"

	"github.com/colabhub/colabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("chat_messages")}
}

// Append adds a message to a project's chat. The author's display name is
// denormalized onto the message so the feed renders without a user lookup.
func (s *Store) Append(ctx context.Context, projectID, authorID primitive.ObjectID, authorName, body string) (models.ChatMessage, error) {
	m := models.ChatMessage{
		ID:         primitive.NewObjectID(),
		ProjectID:  projectID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.ChatMessage{}, err
	}
	return m, nil
}

// ListForProject returns the chat feed in ascending timestamp order. A zero
// `after` returns the whole feed; otherwise only newer messages, which lets
// clients poll incrementally.
func (s *Store) ListForProject(ctx context.Context, projectID primitive.ObjectID, after time.Time, limit int64) ([]models.ChatMessage, error) {
	query := bson.M{"project_id": projectID}
	if !after.IsZero() {
		query["created_at"] = bson.M{"$gt": after}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ChatMessage
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteForProject removes a project's chat history, used when the project
// itself is deleted.
func (s *Store) DeleteForProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
