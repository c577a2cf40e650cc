// Package collabpolicy provides authorization policies for collaboration
// requests.
//
// Authorization rules:
//   - Anyone signed in except the creator may apply, while the project has
//     a vacancy and they have no live request or membership already
//   - Only the project's creator (or an administrator) resolves requests
//   - Only pending requests can be resolved
package collabpolicy

import (
	"net/http"

	"github.com/colabhub/colabhub/internal/app/system/authz"
	"github.com/colabhub/colabhub/internal/domain/models"
)

// ApplicantState carries the facts about the applicant's existing relation
// to the project, loaded by the handler before the decision.
type ApplicantState struct {
	AcceptedCount int
	HasPending    bool
	IsMember      bool
}

// CanApply decides whether the current user may request to collaborate on
// the project. Returns Unknown until the project document is available, so
// the caller can hold the button in a neutral state instead of denying.
func CanApply(r *http.Request, p *models.Project, st ApplicantState) authz.Decision {
	if p == nil {
		return authz.Unknown
	}
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return authz.Denied
	}
	if authz.SameID(p.CreatorID, userID) {
		return authz.Denied
	}
	if st.HasPending || st.IsMember {
		return authz.Denied
	}
	if p.Status != models.ProjectActive {
		return authz.Denied
	}
	return authz.Of(p.HasVacancy(st.AcceptedCount))
}

// CanResolve decides whether the current user may accept or reject the
// given request on the given project.
func CanResolve(r *http.Request, p *models.Project, c *models.Collaboration) authz.Decision {
	if p == nil || c == nil {
		return authz.Unknown
	}
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return authz.Denied
	}
	if !authz.SameID(c.ProjectID, p.ID) {
		return authz.Denied
	}
	return authz.Of(authz.IsAdministrator(r) || authz.SameID(p.CreatorID, userID))
}

// CanCancel decides whether the current user may withdraw the request:
// only the applicant, and only while it is pending.
func CanCancel(r *http.Request, c *models.Collaboration) authz.Decision {
	if c == nil {
		return authz.Unknown
	}
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return authz.Denied
	}
	if c.Status != models.CollabPending {
		return authz.Denied
	}
	return authz.Of(authz.SameID(c.UserID, userID))
}

// TransitionAllowed reports whether a request may move from its current
// status to the target status. Pending is the only state with outgoing
// edges.
func TransitionAllowed(from, to models.CollaborationStatus) bool {
	if from != models.CollabPending {
		return false
	}
	switch to {
	case models.CollabAccepted, models.CollabRejected, models.CollabCancelled:
		return true
	}
	return false
}
