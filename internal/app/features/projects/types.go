// internal/app/features/projects/types.go
package projects

import (
	"github.com/colabhub/colabhub/internal/domain/models"
)

// projectView is a project plus its derived membership fields. The count
// and vacancy flag come from the collaborations aggregation, never from
// the project document.
type projectView struct {
	models.Project
	CollaboratorsCount int  `json:"collaborators_count"`
	HasVacancy         bool `json:"has_vacancy"`
}

// permissionsView is the caller's authorization snapshot for one project,
// computed once per request after every input is loaded. Decisions render
// as "allowed", "denied" or "unknown" so a client can distinguish a real
// denial from a value it should not act on.
type permissionsView struct {
	IsOwner              bool   `json:"is_owner"`
	AlreadyCollaborating bool   `json:"already_collaborating"`
	HasPendingRequest    bool   `json:"has_pending_request"`
	CanEdit              string `json:"can_edit"`
	CanDelete            string `json:"can_delete"`
	CanApply             string `json:"can_apply"`
	CanViewRequests      string `json:"can_view_requests"`
}

// detailView is the GET /api/proyectos/{id} payload.
type detailView struct {
	projectView
	CommentsCount int64           `json:"comments_count"`
	Permissions   permissionsView `json:"permissions"`
}

type createRequest struct {
	Title               string   `json:"title" validate:"required,min=3,max=200"`
	Description         string   `json:"description" validate:"required,min=10,max=5000"`
	Objective           string   `json:"objective" validate:"omitempty,max=2000"`
	Status              string   `json:"status" validate:"omitempty,oneof=draft active in_progress completed cancelled"`
	CollaboratorsNeeded int      `json:"collaborators_needed" validate:"required,gte=1,lte=50"`
	DisciplineIDs       []string `json:"discipline_ids" validate:"omitempty,dive,len=24"`
	SkillIDs            []string `json:"skill_ids" validate:"omitempty,dive,len=24"`
}

// updateRequest is the merge-write body for PUT: a nil field means the
// stored value is untouched.
type updateRequest struct {
	Title               *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description         *string  `json:"description" validate:"omitempty,min=10,max=5000"`
	Objective           *string  `json:"objective" validate:"omitempty,max=2000"`
	Status              *string  `json:"status" validate:"omitempty,oneof=draft active in_progress completed cancelled"`
	CollaboratorsNeeded *int     `json:"collaborators_needed" validate:"omitempty,gte=1,lte=50"`
	DisciplineIDs       []string `json:"discipline_ids" validate:"omitempty,dive,len=24"`
	SkillIDs            []string `json:"skill_ids" validate:"omitempty,dive,len=24"`
}

type applyRequest struct {
	Message string `json:"message" validate:"omitempty,max=1000"`
}

// collaboratorView is one entry of GET /api/proyectos/{id}/colaboradores.
type collaboratorView struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role"`
}

// requestView is one pending request with the applicant's display fields.
type requestView struct {
	models.Collaboration
	ApplicantName  string `json:"applicant_name"`
	ApplicantEmail string `json:"applicant_email"`
}
