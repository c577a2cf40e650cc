// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/colabhub/colabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Decision is the result of a permission check whose inputs may not have
// resolved yet. Callers must not confuse Unknown with Denied: a rendering
// or routing layer that sees Unknown re-evaluates once the inputs settle,
// it never hides or reveals a control based on it.
type Decision int

const (
	Unknown Decision = iota
	Denied
	Allowed
)

// Bool collapses the decision for contexts where all inputs are known to
// be resolved. Unknown maps to false there, so call it only after the data
// dependencies have loaded.
func (d Decision) Bool() bool { return d == Allowed }

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Of converts a resolved boolean into a Decision.
func Of(allowed bool) Decision {
	if allowed {
		return Allowed
	}
	return Denied
}

// UserCtx returns the principal's role, name, Mongo ObjectID, and a found
// flag. If no user is present or the stored ID is malformed it returns
// (RoleUnspecified, "", NilObjectID, false), so ok=true always means a
// valid authenticated principal with a well-formed ID.
func UserCtx(r *http.Request) (role models.Role, name string, userID primitive.ObjectID, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return models.RoleUnspecified, "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		// Malformed ID in session - fail closed.
		return models.RoleUnspecified, "", primitive.NilObjectID, false
	}
	return u.Role, u.Name, userID, true
}

// IsAdministrator reports whether the current request's user is an administrator.
func IsAdministrator(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdministrator
}

// IsInstructor reports whether the current request's user is an instructor.
func IsInstructor(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleInstructor
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleStudent
}

// SameID compares two principal/creator IDs after normalizing both to
// their canonical hex string form. The identity provider hands out hex
// strings while stores hand out ObjectIDs; comparing the string forms keeps
// ownership checks representation-independent.
func SameID(a, b interface{}) bool {
	return idString(a) != "" && idString(a) == idString(b)
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		if id == primitive.NilObjectID {
			return ""
		}
		return id.Hex()
	case *primitive.ObjectID:
		if id == nil || *id == primitive.NilObjectID {
			return ""
		}
		return id.Hex()
	case string:
		return id
	default:
		return ""
	}
}
