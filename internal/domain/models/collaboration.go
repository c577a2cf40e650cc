// internal/domain/models/collaboration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CollaborationStatus is the state of a collaboration request.
//
// State machine per (project, user) pair:
//
//	(no relation) -> pending -> accepted | rejected
//
// accepted/rejected are terminal for that request; a user may open a new
// pending request later, subject to the at-most-one-pending rule that the
// collabstore enforces with a partial unique index.
type CollaborationStatus string

const (
	CollabPending   CollaborationStatus = "pending"
	CollabAccepted  CollaborationStatus = "accepted"
	CollabRejected  CollaborationStatus = "rejected"
	CollabCancelled CollaborationStatus = "cancelled"
)

// ValidCollaborationStatus reports whether s is a known request status.
func ValidCollaborationStatus(s CollaborationStatus) bool {
	switch s {
	case CollabPending, CollabAccepted, CollabRejected, CollabCancelled:
		return true
	}
	return false
}

// CollaborationRole is the role a collaborator takes on the project.
type CollaborationRole string

const (
	CollabRoleCollaborator CollaborationRole = "collaborator"
	CollabRoleLeader       CollaborationRole = "leader"
)

// Collaboration is a request by a user to join a project, and — once
// accepted — the record of their membership. Exactly one pending document
// may exist per (project_id, user_id).
type Collaboration struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID  `bson:"project_id" json:"project_id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Status    CollaborationStatus `bson:"status" json:"status"`
	Role      CollaborationRole   `bson:"role" json:"role"`
	Message   string              `bson:"message,omitempty" json:"message,omitempty"`
	Response  string              `bson:"response,omitempty" json:"response,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Resolved reports whether the request has reached a terminal state.
func (c *Collaboration) Resolved() bool {
	return c.Status == CollabAccepted || c.Status == CollabRejected || c.Status == CollabCancelled
}
