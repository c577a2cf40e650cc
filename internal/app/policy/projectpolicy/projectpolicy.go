// Package projectpolicy provides authorization policies for projects.
//
// Authorization rules:
//   - Administrators can edit or delete any project
//   - The project's creator can edit or delete their own project
//   - Only the creator (or an administrator) can view the request queue
//   - Everyone signed in can view projects; listing needs no policy
//
// Every check returns an authz.Decision: when the project has not loaded
// yet the answer is Unknown, not Denied, so callers can defer rendering or
// retry instead of flashing a deny.
package projectpolicy

import (
	"net/http"

	"github.com/colabhub/colabhub/internal/app/system/authz"
	"github.com/colabhub/colabhub/internal/domain/models"
)

// IsOwner reports whether the current user created the project.
func IsOwner(r *http.Request, p *models.Project) bool {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok || p == nil {
		return false
	}
	return authz.SameID(p.CreatorID, userID)
}

// CanEdit decides whether the current user may modify the project.
func CanEdit(r *http.Request, p *models.Project) authz.Decision {
	if p == nil {
		return authz.Unknown
	}
	_, _, _, ok := authz.UserCtx(r)
	if !ok {
		return authz.Denied
	}
	return authz.Of(authz.IsAdministrator(r) || IsOwner(r, p))
}

// CanDelete decides whether the current user may delete the project.
// Same rule as editing; kept separate so the rules can diverge without
// touching callers.
func CanDelete(r *http.Request, p *models.Project) authz.Decision {
	return CanEdit(r, p)
}

// CanViewRequests decides whether the current user may see the project's
// collaboration request queue.
func CanViewRequests(r *http.Request, p *models.Project) authz.Decision {
	if p == nil {
		return authz.Unknown
	}
	_, _, _, ok := authz.UserCtx(r)
	if !ok {
		return authz.Denied
	}
	return authz.Of(authz.IsAdministrator(r) || IsOwner(r, p))
}

// CanViewChat decides whether the current user may read or post in the
// project chat: the creator and accepted collaborators only. The
// membership flag comes from the collaborations store.
func CanViewChat(r *http.Request, p *models.Project, isAcceptedCollaborator bool) authz.Decision {
	if p == nil {
		return authz.Unknown
	}
	_, _, _, ok := authz.UserCtx(r)
	if !ok {
		return authz.Denied
	}
	return authz.Of(authz.IsAdministrator(r) || IsOwner(r, p) || isAcceptedCollaborator)
}
