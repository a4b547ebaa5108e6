// internal/app/features/health/handler.go
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// DBPinger is satisfied by *sql.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// KVPinger is satisfied by every kv.Store.
type KVPinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB  DBPinger
	KV  KVPinger
	Log *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(db DBPinger, kvStore KVPinger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		KV:  kvStore,
		Log: logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	KV       string `json:"kv"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "kv":"connected" }
//
// On failure of either dependency: 503 with the failing side marked
// "disconnected". Error detail goes to the log only.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		KV:       "connected",
	}

	if err := h.DB.PingContext(ctx); err != nil {
		h.Log.Error("health-check: database ping failed", zap.Error(err))
		resp.Database = "disconnected"
	}
	if err := h.KV.Ping(ctx); err != nil {
		h.Log.Error("health-check: kv ping failed", zap.Error(err))
		resp.KV = "disconnected"
	}

	if resp.Database != "connected" || resp.KV != "connected" {
		resp.Status = "error"
		resp.Message = "Dependency unavailable"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
