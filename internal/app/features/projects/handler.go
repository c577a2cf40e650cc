// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/colabhub/colabhub/internal/app/policy/collabpolicy"
	"github.com/colabhub/colabhub/internal/app/policy/projectpolicy"
	catalogstore "github.com/colabhub/colabhub/internal/app/store/catalog"
	chatstore "github.com/colabhub/colabhub/internal/app/store/chat"
	collabstore "github.com/colabhub/colabhub/internal/app/store/collaborations"
	commentstore "github.com/colabhub/colabhub/internal/app/store/comments"
	projectstore "github.com/colabhub/colabhub/internal/app/store/projects"
	userstore "github.com/colabhub/colabhub/internal/app/store/users"
	"github.com/colabhub/colabhub/internal/app/system/authz"
	"github.com/colabhub/colabhub/internal/app/system/htmlsanitize"
	"github.com/colabhub/colabhub/internal/app/system/httpjson"
	"github.com/colabhub/colabhub/internal/app/system/inputval"
	"github.com/colabhub/colabhub/internal/app/system/mailer"
	"github.com/colabhub/colabhub/internal/app/system/paging"
	"github.com/colabhub/colabhub/internal/app/system/timeouts"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler implements the project endpoints: the explore listing, CRUD,
// membership views, and the application flow.
type Handler struct {
	Projects *projectstore.Store
	Collabs  *collabstore.Store
	Comments *commentstore.Store
	Chat     *chatstore.Store
	Users    *userstore.Store
	Catalog  *catalogstore.Store
	Mail     mailer.Sender
	Log      *zap.Logger

	SiteName  string
	BaseURL   string
	UploadDir string
}

func NewHandler(
	projects *projectstore.Store,
	collabs *collabstore.Store,
	comments *commentstore.Store,
	chat *chatstore.Store,
	users *userstore.Store,
	catalog *catalogstore.Store,
	mail mailer.Sender,
	logger *zap.Logger,
	siteName, baseURL, uploadDir string,
) *Handler {
	return &Handler{
		Projects:  projects,
		Collabs:   collabs,
		Comments:  comments,
		Chat:      chat,
		Users:     users,
		Catalog:   catalog,
		Mail:      mail,
		Log:       logger,
		SiteName:  siteName,
		BaseURL:   baseURL,
		UploadDir: uploadDir,
	}
}

// hydrate attaches derived collaboration counts to a page of projects with
// a single aggregation round trip.
func (h *Handler) hydrate(ctx context.Context, projects []models.Project) ([]projectView, error) {
	ids := make([]primitive.ObjectID, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	counts, err := h.Collabs.CountAcceptedMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]projectView, len(projects))
	for i, p := range projects {
		n := counts[p.ID]
		views[i] = projectView{
			Project:            p,
			CollaboratorsCount: n,
			HasVacancy:         p.HasVacancy(n),
		}
	}
	return views, nil
}

func (h *Handler) loadProject(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "ID inválido.")
		return nil, false
	}
	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Proyecto no encontrado.")
			return nil, false
		}
		h.Log.Error("projects: load", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar el proyecto.")
		return nil, false
	}
	return p, true
}

// ServeList handles GET /api/proyectos.
// Supports ?status=, ?discipline_id=, ?search= and paging parameters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	filter := projectstore.ListFilter{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.ProjectStatus(raw)
		if !models.ValidProjectStatus(status) {
			httpjson.Error(w, http.StatusBadRequest, "Estado desconocido.")
			return
		}
		filter.Status = status
	}
	if raw := r.URL.Query().Get("discipline_id"); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "discipline_id inválido.")
			return
		}
		filter.DisciplineID = &oid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projects, err := h.Projects.List(ctx, filter, page)
	if err != nil {
		h.Log.Error("projects: list", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar proyectos.")
		return
	}
	total, err := h.Projects.Count(ctx, filter)
	if err != nil {
		h.Log.Error("projects: count", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar proyectos.")
		return
	}
	views, err := h.hydrate(ctx, projects)
	if err != nil {
		h.Log.Error("projects: hydrate counts", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar proyectos.")
		return
	}

	httpjson.OK(w, httpjson.ListEnvelope{Count: total, Page: page.Page, Results: views})
}

// ServeMine handles GET /api/proyectos/mis_proyectos: projects the caller
// created, regardless of status.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}
	page := paging.Parse(r)
	filter := projectstore.ListFilter{CreatorID: &userID}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projects, err := h.Projects.List(ctx, filter, page)
	if err != nil {
		h.Log.Error("projects: list own", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar tus proyectos.")
		return
	}
	total, err := h.Projects.Count(ctx, filter)
	if err != nil {
		h.Log.Error("projects: count own", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar tus proyectos.")
		return
	}
	views, err := h.hydrate(ctx, projects)
	if err != nil {
		h.Log.Error("projects: hydrate counts", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar tus proyectos.")
		return
	}

	httpjson.OK(w, httpjson.ListEnvelope{Count: total, Page: page.Page, Results: views})
}

// ServeCollaborating handles GET /api/proyectos/colaborando: projects where
// the caller is an accepted collaborator.
func (h *Handler) ServeCollaborating(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ids, err := h.Collabs.ProjectIDsForUser(ctx, userID, models.CollabAccepted)
	if err != nil {
		h.Log.Error("projects: collaborating ids", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar proyectos.")
		return
	}
	projects, err := h.Projects.GetMany(ctx, ids)
	if err != nil {
		h.Log.Error("projects: collaborating load", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar proyectos.")
		return
	}
	views, err := h.hydrate(ctx, projects)
	if err != nil {
		h.Log.Error("projects: hydrate counts", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar proyectos.")
		return
	}

	httpjson.OK(w, httpjson.ListEnvelope{Count: int64(len(views)), Page: 1, Results: views})
}

// ServeDetail handles GET /api/proyectos/{id}. The response carries the
// caller's permissions alongside the project so a client never has to
// re-derive authorization rules locally.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}

	accepted, err := h.Collabs.CountAccepted(ctx, p.ID)
	if err != nil {
		h.Log.Error("projects: accepted count", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar el proyecto.")
		return
	}

	commentCount, err := h.Comments.CountForProject(ctx, p.ID)
	if err != nil {
		h.Log.Error("projects: comment count", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar el proyecto.")
		return
	}

	st := collabpolicy.ApplicantState{AcceptedCount: int(accepted)}
	if _, _, userID, signedIn := authz.UserCtx(r); signedIn {
		if st.HasPending, err = h.Collabs.HasPending(ctx, p.ID, userID); err != nil {
			h.Log.Error("projects: pending check", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar el proyecto.")
			return
		}
		if st.IsMember, err = h.Collabs.IsAcceptedCollaborator(ctx, p.ID, userID); err != nil {
			h.Log.Error("projects: membership check", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar el proyecto.")
			return
		}
	}

	httpjson.OK(w, detailView{
		projectView: projectView{
			Project:            *p,
			CollaboratorsCount: int(accepted),
			HasVacancy:         p.HasVacancy(int(accepted)),
		},
		CommentsCount: commentCount,
		Permissions: permissionsView{
			IsOwner:              projectpolicy.IsOwner(r, p),
			AlreadyCollaborating: st.IsMember,
			HasPendingRequest:    st.HasPending,
			CanEdit:              projectpolicy.CanEdit(r, p).String(),
			CanDelete:            projectpolicy.CanDelete(r, p).String(),
			CanApply:             collabpolicy.CanApply(r, p, st).String(),
			CanViewRequests:      projectpolicy.CanViewRequests(r, p).String(),
		},
	})
}

// HandleCreate handles POST /api/proyectos.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	var req createRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	disciplineIDs, ok := h.checkDisciplines(ctx, w, req.DisciplineIDs)
	if !ok {
		return
	}
	skillIDs, ok := h.checkSkills(ctx, w, req.SkillIDs)
	if !ok {
		return
	}

	p, err := h.Projects.Create(ctx, models.Project{
		Title:               req.Title,
		Description:         htmlsanitize.Sanitize(req.Description),
		Objective:           htmlsanitize.Sanitize(req.Objective),
		CreatorID:           userID,
		Status:              models.ProjectStatus(req.Status),
		CollaboratorsNeeded: req.CollaboratorsNeeded,
		DisciplineIDs:       disciplineIDs,
		SkillIDs:            skillIDs,
	})
	if err != nil {
		h.Log.Error("projects: create", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo crear el proyecto.")
		return
	}

	h.Log.Info("project created",
		zap.String("project_id", p.ID.Hex()),
		zap.String("creator_id", userID.Hex()))
	httpjson.Created(w, projectView{Project: p, CollaboratorsCount: 0, HasVacancy: true})
}

// HandleUpdate handles PUT /api/proyectos/{id}. Merge-write: only the
// fields present in the request are touched.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	if !projectpolicy.CanEdit(r, p).Bool() {
		httpjson.Error(w, http.StatusForbidden, "No puedes modificar este proyecto.")
		return
	}

	upd := projectstore.Update{
		Title:               req.Title,
		CollaboratorsNeeded: req.CollaboratorsNeeded,
	}
	if req.Description != nil {
		clean := htmlsanitize.Sanitize(*req.Description)
		upd.Description = &clean
	}
	if req.Objective != nil {
		clean := htmlsanitize.Sanitize(*req.Objective)
		upd.Objective = &clean
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		upd.Status = &status
	}
	if req.DisciplineIDs != nil {
		ids, ok := h.checkDisciplines(ctx, w, req.DisciplineIDs)
		if !ok {
			return
		}
		upd.DisciplineIDs = ids
		upd.SetDisciplines = true
	}
	if req.SkillIDs != nil {
		ids, ok := h.checkSkills(ctx, w, req.SkillIDs)
		if !ok {
			return
		}
		upd.SkillIDs = ids
		upd.SetSkills = true
	}

	if err := h.Projects.Apply(ctx, p.ID, upd); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Proyecto no encontrado.")
			return
		}
		h.Log.Error("projects: update", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo actualizar el proyecto.")
		return
	}

	updated, err := h.Projects.GetByID(ctx, p.ID)
	if err != nil {
		h.Log.Error("projects: reload after update", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo actualizar el proyecto.")
		return
	}
	accepted, err := h.Collabs.CountAccepted(ctx, p.ID)
	if err != nil {
		h.Log.Error("projects: accepted count", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo actualizar el proyecto.")
		return
	}
	httpjson.OK(w, projectView{
		Project:            *updated,
		CollaboratorsCount: int(accepted),
		HasVacancy:         updated.HasVacancy(int(accepted)),
	})
}

// HandleDelete handles DELETE /api/proyectos/{id}. Collaborations, comments
// and chat messages attached to the project are removed with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	if !projectpolicy.CanDelete(r, p).Bool() {
		httpjson.Error(w, http.StatusForbidden, "No puedes eliminar este proyecto.")
		return
	}

	if err := h.Projects.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Proyecto no encontrado.")
			return
		}
		h.Log.Error("projects: delete", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo eliminar el proyecto.")
		return
	}

	// The project document is gone; the attachments are cleanup. A failure
	// here leaves orphans that no listing can reach, so log and move on.
	if _, err := h.Collabs.DeleteForProject(ctx, p.ID); err != nil {
		h.Log.Error("projects: delete collaborations", zap.String("project_id", p.ID.Hex()), zap.Error(err))
	}
	if _, err := h.Comments.DeleteForProject(ctx, p.ID); err != nil {
		h.Log.Error("projects: delete comments", zap.String("project_id", p.ID.Hex()), zap.Error(err))
	}
	if _, err := h.Chat.DeleteForProject(ctx, p.ID); err != nil {
		h.Log.Error("projects: delete chat", zap.String("project_id", p.ID.Hex()), zap.Error(err))
	}

	h.Log.Info("project deleted", zap.String("project_id", p.ID.Hex()))
	httpjson.NoContent(w)
}

// ServeCollaborators handles GET /api/proyectos/{id}/colaboradores.
func (h *Handler) ServeCollaborators(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}

	ids, err := h.Collabs.AcceptedUserIDs(ctx, p.ID)
	if err != nil {
		h.Log.Error("projects: collaborator ids", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar colaboradores.")
		return
	}
	users, err := h.Users.GetMany(ctx, ids)
	if err != nil {
		h.Log.Error("projects: collaborator users", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar colaboradores.")
		return
	}

	views := make([]collaboratorView, 0, len(users))
	for _, u := range users {
		views = append(views, collaboratorView{
			UserID:    u.ID.Hex(),
			FullName:  u.FullName,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
			Role:      string(u.Role),
		})
	}
	httpjson.OK(w, views)
}

// ServeRequests handles GET /api/proyectos/{id}/solicitudes: the pending
// request queue, visible to the creator and administrators only.
func (h *Handler) ServeRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	if !projectpolicy.CanViewRequests(r, p).Bool() {
		httpjson.Error(w, http.StatusForbidden, "No puedes ver las solicitudes de este proyecto.")
		return
	}

	pending, err := h.Collabs.ListForProject(ctx, p.ID, models.CollabPending)
	if err != nil {
		h.Log.Error("projects: list requests", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar solicitudes.")
		return
	}

	userIDs := make([]primitive.ObjectID, len(pending))
	for i, c := range pending {
		userIDs[i] = c.UserID
	}
	applicants, err := h.Users.GetMany(ctx, userIDs)
	if err != nil {
		h.Log.Error("projects: load applicants", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar solicitudes.")
		return
	}
	byID := make(map[primitive.ObjectID]models.User, len(applicants))
	for _, u := range applicants {
		byID[u.ID] = u
	}

	views := make([]requestView, 0, len(pending))
	for _, c := range pending {
		v := requestView{Collaboration: c}
		if u, found := byID[c.UserID]; found {
			v.ApplicantName = u.FullName
			v.ApplicantEmail = u.Email
		}
		views = append(views, v)
	}
	httpjson.OK(w, views)
}

// HandleApply handles POST /api/proyectos/{id}/solicitar_colaboracion.
//
// The policy check and the partial unique index guard the same invariant at
// two levels: the policy gives a friendly answer, the index holds under
// concurrent submissions.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	_, userName, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	var req applyRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}

	accepted, err := h.Collabs.CountAccepted(ctx, p.ID)
	if err != nil {
		h.Log.Error("projects: accepted count", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo enviar la solicitud.")
		return
	}
	hasPending, err := h.Collabs.HasPending(ctx, p.ID, userID)
	if err != nil {
		h.Log.Error("projects: pending check", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo enviar la solicitud.")
		return
	}
	isMember, err := h.Collabs.IsAcceptedCollaborator(ctx, p.ID, userID)
	if err != nil {
		h.Log.Error("projects: membership check", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo enviar la solicitud.")
		return
	}

	st := collabpolicy.ApplicantState{
		AcceptedCount: int(accepted),
		HasPending:    hasPending,
		IsMember:      isMember,
	}
	if !collabpolicy.CanApply(r, p, st).Bool() {
		httpjson.Error(w, http.StatusUnprocessableEntity, "No puedes solicitar colaborar en este proyecto.")
		return
	}

	c, err := h.Collabs.Create(ctx, p.ID, userID, htmlsanitize.Sanitize(req.Message))
	if err != nil {
		if errors.Is(err, collabstore.ErrDuplicatePending) {
			httpjson.Error(w, http.StatusConflict, "Ya tienes una solicitud pendiente para este proyecto.")
			return
		}
		h.Log.Error("projects: create request", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo enviar la solicitud.")
		return
	}

	h.notifyOwner(ctx, p, userName, c.Message)

	h.Log.Info("collaboration requested",
		zap.String("project_id", p.ID.Hex()),
		zap.String("user_id", userID.Hex()))
	httpjson.Created(w, c)
}

// notifyOwner emails the project creator about a new request. Mail delivery
// is best effort and never blocks the response.
func (h *Handler) notifyOwner(ctx context.Context, p *models.Project, applicantName, message string) {
	if h.Mail == nil {
		return
	}
	owner, err := h.Users.GetByID(ctx, p.CreatorID)
	if err != nil {
		h.Log.Warn("projects: load owner for mail", zap.String("project_id", p.ID.Hex()), zap.Error(err))
		return
	}

	email := mailer.BuildRequestEmail(mailer.RequestEmailData{
		SiteName:      h.SiteName,
		ProjectTitle:  p.Title,
		ApplicantName: applicantName,
		Message:       message,
		RequestsURL:   fmt.Sprintf("%s/proyectos/%s/solicitudes", h.BaseURL, p.ID.Hex()),
	})
	email.To = owner.Email

	go func() {
		if err := h.Mail.Send(email); err != nil {
			h.Log.Warn("projects: request mail", zap.String("to", owner.Email), zap.Error(err))
		}
	}()
}

const maxImageBytes = 5 << 20

// HandleImageUpload handles POST /api/proyectos/{id}/imagen. The file is
// stored on disk under a random name; only the URL lands in the document.
func (h *Handler) HandleImageUpload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	if !projectpolicy.CanEdit(r, p).Bool() {
		httpjson.Error(w, http.StatusForbidden, "No puedes modificar este proyecto.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	file, _, err := r.FormFile("image")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Falta el archivo de imagen.")
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		httpjson.Error(w, http.StatusBadRequest, "No se pudo leer la imagen.")
		return
	}
	head = head[:n]

	var ext string
	switch http.DetectContentType(head) {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	default:
		httpjson.Error(w, http.StatusUnsupportedMediaType, "Formato de imagen no soportado (JPEG, PNG o WebP).")
		return
	}

	name := uuid.NewString() + ext
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		h.Log.Error("projects: upload dir", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo guardar la imagen.")
		return
	}
	dst, err := os.Create(filepath.Join(h.UploadDir, name))
	if err != nil {
		h.Log.Error("projects: create image file", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo guardar la imagen.")
		return
	}
	defer dst.Close()

	if _, err := dst.Write(head); err == nil {
		_, err = io.Copy(dst, file)
	}
	if err != nil {
		h.Log.Error("projects: write image", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo guardar la imagen.")
		return
	}

	imageURL := "/uploads/" + name
	old := p.ImageURL
	if err := h.Projects.Apply(ctx, p.ID, projectstore.Update{ImageURL: &imageURL}); err != nil {
		h.Log.Error("projects: store image url", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo guardar la imagen.")
		return
	}

	// Replaced images are removed so the upload dir does not grow without
	// bound. Only files we named (uuid + known extension) are candidates.
	if old != "" {
		if prev := filepath.Base(old); prev != "" && prev != "." && prev != "/" {
			if err := os.Remove(filepath.Join(h.UploadDir, prev)); err != nil && !os.IsNotExist(err) {
				h.Log.Warn("projects: remove old image", zap.String("file", prev), zap.Error(err))
			}
		}
	}

	httpjson.OK(w, map[string]string{"image_url": imageURL})
}

// checkDisciplines parses and verifies the discipline ID list against the
// catalog, writing the error response itself on failure.
func (h *Handler) checkDisciplines(ctx context.Context, w http.ResponseWriter, raw []string) ([]primitive.ObjectID, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "discipline_ids contiene un ID inválido.")
			return nil, false
		}
		ids = append(ids, oid)
	}
	exist, err := h.Catalog.DisciplinesExist(ctx, ids)
	if err != nil {
		h.Log.Error("projects: check disciplines", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo validar las disciplinas.")
		return nil, false
	}
	if !exist {
		httpjson.Error(w, http.StatusBadRequest, "Alguna disciplina no existe.")
		return nil, false
	}
	return ids, true
}

func (h *Handler) checkSkills(ctx context.Context, w http.ResponseWriter, raw []string) ([]primitive.ObjectID, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "skill_ids contiene un ID inválido.")
			return nil, false
		}
		ids = append(ids, oid)
	}
	exist, err := h.Catalog.SkillsExist(ctx, ids)
	if err != nil {
		h.Log.Error("projects: check skills", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo validar las habilidades.")
		return nil, false
	}
	if !exist {
		httpjson.Error(w, http.StatusBadRequest, "Alguna habilidad no existe.")
		return nil, false
	}
	return ids, true
}
