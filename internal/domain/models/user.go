// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the portal role stored on a user document.
// Values are a closed set; anything else found in the database is treated
// as RoleUnspecified by ParseRole.
type Role string

const (
	RoleStudent       Role = "student"
	RoleInstructor    Role = "instructor"
	RoleAdministrator Role = "administrator"
	RoleUnspecified   Role = "unspecified"
)

// ParseRole maps a raw role string onto the closed Role set.
// Unknown or empty values become RoleUnspecified rather than an error, so a
// malformed document can still be loaded (and fixed by an administrator).
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleStudent, RoleInstructor, RoleAdministrator:
		return Role(s)
	default:
		return RoleUnspecified
	}
}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdministrator, RoleUnspecified:
		return true
	}
	return false
}

// User represents a principal and their profile in one document.
//
// NOTE:
//   - Project membership is not embedded here; the collaborations
//     collection is the authoritative join.
//   - Role changes are targeted $set updates (see userstore.UpdateRole),
//     never full-document replaces.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google
	Role         Role               `bson:"role" json:"role"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"` // active | disabled

	// Profile fields (merge-written; all optional).
	Program      string               `bson:"program,omitempty" json:"program,omitempty"` // academic program ("carrera")
	Semester     int                  `bson:"semester,omitempty" json:"semester,omitempty"`
	Phone        string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Bio          string               `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL    string               `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	DisciplineID *primitive.ObjectID  `bson:"discipline_id,omitempty" json:"discipline_id,omitempty"`
	SkillIDs     []primitive.ObjectID `bson:"skill_ids,omitempty" json:"skill_ids,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
