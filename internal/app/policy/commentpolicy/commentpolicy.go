// Package commentpolicy provides authorization policies for project
// comments.
//
// Authorization rules:
//   - Anyone signed in can comment on a visible project
//   - A comment is deletable by its author, the project's creator, or an
//     administrator
package commentpolicy

import (
	"net/http"

	"github.com/colabhub/colabhub/internal/app/system/authz"
	"github.com/colabhub/colabhub/internal/domain/models"
)

// CanComment decides whether the current user may post a comment on the
// project.
func CanComment(r *http.Request, p *models.Project) authz.Decision {
	if p == nil {
		return authz.Unknown
	}
	_, _, _, ok := authz.UserCtx(r)
	return authz.Of(ok)
}

// CanDelete decides whether the current user may delete the comment.
// Both the comment and its project must have loaded; either missing makes
// the answer Unknown, never a default deny or allow.
func CanDelete(r *http.Request, c *models.Comment, p *models.Project) authz.Decision {
	if c == nil || p == nil {
		return authz.Unknown
	}
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return authz.Denied
	}
	if authz.IsAdministrator(r) {
		return authz.Allowed
	}
	return authz.Of(authz.SameID(c.AuthorID, userID) || authz.SameID(p.CreatorID, userID))
}
