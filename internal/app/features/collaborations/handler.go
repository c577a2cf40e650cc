// internal/app/features/collaborations/handler.go
package collaborations

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/colabhub/colabhub/internal/app/policy/collabpolicy"
	collabstore "github.com/colabhub/colabhub/internal/app/store/collaborations"
	projectstore "github.com/colabhub/colabhub/internal/app/store/projects"
	userstore "github.com/colabhub/colabhub/internal/app/store/users"
	"github.com/colabhub/colabhub/internal/app/system/authz"
	"github.com/colabhub/colabhub/internal/app/system/htmlsanitize"
	"github.com/colabhub/colabhub/internal/app/system/httpjson"
	"github.com/colabhub/colabhub/internal/app/system/inputval"
	"github.com/colabhub/colabhub/internal/app/system/mailer"
	"github.com/colabhub/colabhub/internal/app/system/timeouts"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler implements the collaboration request endpoints: the applicant's
// own request list and the resolution flow (accept, reject, cancel).
type Handler struct {
	Collabs  *collabstore.Store
	Projects *projectstore.Store
	Users    *userstore.Store
	Mail     mailer.Sender
	Log      *zap.Logger

	SiteName string
	BaseURL  string
}

func NewHandler(
	collabs *collabstore.Store,
	projects *projectstore.Store,
	users *userstore.Store,
	mail mailer.Sender,
	logger *zap.Logger,
	siteName, baseURL string,
) *Handler {
	return &Handler{
		Collabs:  collabs,
		Projects: projects,
		Users:    users,
		Mail:     mail,
		Log:      logger,
		SiteName: siteName,
		BaseURL:  baseURL,
	}
}

// requestView pairs a collaboration with the project's title so the list
// renders without a second round trip.
type requestView struct {
	models.Collaboration
	ProjectTitle  string `json:"project_title"`
	ProjectStatus string `json:"project_status"`
}

// ServeMine handles GET /api/colaboraciones/mis_solicitudes.
// Supports ?status= to narrow to one request state.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	var status models.CollaborationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = models.CollaborationStatus(raw)
		if !models.ValidCollaborationStatus(status) {
			httpjson.Error(w, http.StatusBadRequest, "Estado desconocido.")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	requests, err := h.Collabs.ListForUser(ctx, userID, status)
	if err != nil {
		h.Log.Error("collaborations: list own", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar tus solicitudes.")
		return
	}

	projectIDs := make([]primitive.ObjectID, len(requests))
	for i, c := range requests {
		projectIDs[i] = c.ProjectID
	}
	projects, err := h.Projects.GetMany(ctx, projectIDs)
	if err != nil {
		h.Log.Error("collaborations: load projects", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar tus solicitudes.")
		return
	}
	byID := make(map[primitive.ObjectID]models.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	views := make([]requestView, 0, len(requests))
	for _, c := range requests {
		v := requestView{Collaboration: c}
		// The project may have been deleted since; the request still lists.
		if p, found := byID[c.ProjectID]; found {
			v.ProjectTitle = p.Title
			v.ProjectStatus = string(p.Status)
		}
		views = append(views, v)
	}
	httpjson.OK(w, views)
}

type resolveRequest struct {
	Response string `json:"response" validate:"omitempty,max=1000"`
}

// loadForResolve fetches the collaboration and its project and runs the
// resolution policy. Writes the error response itself on failure.
func (h *Handler) loadForResolve(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Collaboration, *models.Project, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "ID inválido.")
		return nil, nil, false
	}

	c, err := h.Collabs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, collabstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Solicitud no encontrada.")
			return nil, nil, false
		}
		h.Log.Error("collaborations: load", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar la solicitud.")
		return nil, nil, false
	}

	p, err := h.Projects.GetByID(ctx, c.ProjectID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "El proyecto de esta solicitud ya no existe.")
			return nil, nil, false
		}
		h.Log.Error("collaborations: load project", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar la solicitud.")
		return nil, nil, false
	}

	if !collabpolicy.CanResolve(r, p, c).Bool() {
		httpjson.Error(w, http.StatusForbidden, "No puedes resolver esta solicitud.")
		return nil, nil, false
	}
	return c, p, true
}

// HandleAccept handles POST /api/colaboraciones/{id}/aceptar.
//
// Capacity is re-checked inside the store at write time, so two accepts
// racing for the last vacancy cannot both land.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, p, ok := h.loadForResolve(ctx, w, r)
	if !ok {
		return
	}
	if !collabpolicy.TransitionAllowed(c.Status, models.CollabAccepted) {
		httpjson.Error(w, http.StatusConflict, "La solicitud ya fue resuelta.")
		return
	}

	response := htmlsanitize.Sanitize(req.Response)
	resolved, err := h.Collabs.Accept(ctx, c.ID, response, p.CollaboratorsNeeded)
	if err != nil {
		switch {
		case errors.Is(err, collabstore.ErrProjectFull):
			httpjson.Error(w, http.StatusConflict, "El proyecto ya no tiene cupos disponibles.")
		case errors.Is(err, collabstore.ErrNotPending):
			httpjson.Error(w, http.StatusConflict, "La solicitud ya fue resuelta.")
		case errors.Is(err, collabstore.ErrNotFound):
			httpjson.Error(w, http.StatusNotFound, "Solicitud no encontrada.")
		default:
			h.Log.Error("collaborations: accept", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "No se pudo aceptar la solicitud.")
		}
		return
	}

	h.notifyApplicant(ctx, resolved, p, true)
	h.Log.Info("collaboration accepted",
		zap.String("collaboration_id", resolved.ID.Hex()),
		zap.String("project_id", p.ID.Hex()))
	httpjson.OK(w, resolved)
}

// HandleReject handles POST /api/colaboraciones/{id}/rechazar.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, p, ok := h.loadForResolve(ctx, w, r)
	if !ok {
		return
	}
	if !collabpolicy.TransitionAllowed(c.Status, models.CollabRejected) {
		httpjson.Error(w, http.StatusConflict, "La solicitud ya fue resuelta.")
		return
	}

	resolved, err := h.Collabs.Reject(ctx, c.ID, htmlsanitize.Sanitize(req.Response))
	if err != nil {
		switch {
		case errors.Is(err, collabstore.ErrNotPending):
			httpjson.Error(w, http.StatusConflict, "La solicitud ya fue resuelta.")
		case errors.Is(err, collabstore.ErrNotFound):
			httpjson.Error(w, http.StatusNotFound, "Solicitud no encontrada.")
		default:
			h.Log.Error("collaborations: reject", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "No se pudo rechazar la solicitud.")
		}
		return
	}

	h.notifyApplicant(ctx, resolved, p, false)
	h.Log.Info("collaboration rejected",
		zap.String("collaboration_id", resolved.ID.Hex()),
		zap.String("project_id", p.ID.Hex()))
	httpjson.OK(w, resolved)
}

// HandleCancel handles POST /api/colaboraciones/{id}/cancelar: the applicant
// withdraws their own pending request.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "ID inválido.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Collabs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, collabstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Solicitud no encontrada.")
			return
		}
		h.Log.Error("collaborations: load for cancel", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cancelar la solicitud.")
		return
	}
	if !collabpolicy.CanCancel(r, c).Bool() {
		httpjson.Error(w, http.StatusForbidden, "No puedes cancelar esta solicitud.")
		return
	}

	cancelled, err := h.Collabs.CancelOwn(ctx, id, userID)
	if err != nil {
		if errors.Is(err, collabstore.ErrNotPending) {
			httpjson.Error(w, http.StatusConflict, "La solicitud ya fue resuelta.")
			return
		}
		h.Log.Error("collaborations: cancel", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cancelar la solicitud.")
		return
	}

	h.Log.Info("collaboration cancelled",
		zap.String("collaboration_id", cancelled.ID.Hex()),
		zap.String("user_id", userID.Hex()))
	httpjson.OK(w, cancelled)
}

// notifyApplicant emails the applicant about the decision. Best effort;
// delivery never blocks the response.
func (h *Handler) notifyApplicant(ctx context.Context, c *models.Collaboration, p *models.Project, accepted bool) {
	if h.Mail == nil {
		return
	}
	applicant, err := h.Users.GetByID(ctx, c.UserID)
	if err != nil {
		h.Log.Warn("collaborations: load applicant for mail",
			zap.String("collaboration_id", c.ID.Hex()), zap.Error(err))
		return
	}

	email := mailer.BuildDecisionEmail(mailer.DecisionEmailData{
		SiteName:     h.SiteName,
		ProjectTitle: p.Title,
		Accepted:     accepted,
		Response:     c.Response,
		ProjectURL:   fmt.Sprintf("%s/proyectos/%s", h.BaseURL, p.ID.Hex()),
	})
	email.To = applicant.Email

	go func() {
		if err := h.Mail.Send(email); err != nil {
			h.Log.Warn("collaborations: decision mail", zap.String("to", applicant.Email), zap.Error(err))
		}
	}()
}
