package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/smartfactory/pkg/httpx"
	appsvcs "github.com/ghuser/smartfactory/services/audit/application/services"
)

// AuditEntryResponse is one audit record in the operator view.
type AuditEntryResponse struct {
	ID        int64      `json:"id"`
	Actor     string     `json:"actor"`
	Operation string     `json:"operation"`
	TableName string     `json:"table_name"`
	RecordID  *uuid.UUID `json:"record_id,omitempty"`
	Detail    string     `json:"detail"`
	CreatedAt time.Time  `json:"created_at"`
}

// GetAuditHandler handles GET /audit requests.
type GetAuditHandler struct {
	svc *appsvcs.AuditService
}

// NewGetAuditHandler returns a GetAuditHandler backed by the given service.
func NewGetAuditHandler(svc *appsvcs.AuditService) *GetAuditHandler {
	return &GetAuditHandler{svc: svc}
}

// Execute lists recent audit entries, newest first. Accepts ?limit=N (max 500).
func (h *GetAuditHandler) Execute(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.svc.ListRecent(r.Context(), limit)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to list audit entries")
		return
	}

	out := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = AuditEntryResponse{
			ID:        e.ID,
			Actor:     e.Actor,
			Operation: string(e.Operation),
			TableName: e.TableName,
			RecordID:  e.RecordID,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt,
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}
