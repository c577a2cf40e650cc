// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectActive     ProjectStatus = "active"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectDraft, ProjectActive, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Project is a collaboration proposal created by a student or instructor.
//
// The current collaborator count and vacancy flag are never stored on the
// document; they are derived from accepted collaborations on every read so
// the count cannot drift after a partially failed write.
type Project struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title         string               `bson:"title" json:"title"`
	TitleCI       string               `bson:"title_ci" json:"-"`
	Description   string               `bson:"description" json:"description"`
	Objective     string               `bson:"objective" json:"objective"`
	ImageURL      string               `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatorID     primitive.ObjectID   `bson:"creator_id" json:"creator_id"`
	DisciplineIDs []primitive.ObjectID `bson:"discipline_ids,omitempty" json:"discipline_ids,omitempty"`
	SkillIDs      []primitive.ObjectID `bson:"skill_ids,omitempty" json:"skill_ids,omitempty"`
	Status        ProjectStatus        `bson:"status" json:"status"`

	// CollaboratorsNeeded is the capacity; always >= 1.
	CollaboratorsNeeded int `bson:"collaborators_needed" json:"collaborators_needed"`

	StartDate *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasVacancy reports whether the project can take another collaborator,
// given the current accepted-collaboration count.
func (p *Project) HasVacancy(acceptedCount int) bool {
	return acceptedCount < p.CollaboratorsNeeded
}
