// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/colabhub/colabhub/internal/app/system/auditlog"
	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/colabhub/colabhub/internal/app/system/authz"
	"github.com/colabhub/colabhub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

type Handler struct {
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{SessionMgr: sm, Audit: audit, Log: logger}
}

// HandleLogout handles POST /api/auth/logout.
// JWTs are not revoked here; they simply age out at their expiry.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if _, _, userID, ok := authz.UserCtx(r); ok {
		h.Audit.Logout(r.Context(), r, userID)
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: clear session", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cerrar sesión.")
		return
	}

	httpjson.NoContent(w)
}
