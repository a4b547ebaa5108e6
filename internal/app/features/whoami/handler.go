// internal/app/features/whoami/handler.go
package whoami

import (
	"net/http"

	uierrors "github.com/dalemusser/folio/internal/app/features/errors"
	"go.uber.org/zap"
)

// Edge metadata headers.
const (
	CityHeader     = "CF-IPCity"
	CountryHeader  = "CF-IPCountry"
	TimezoneHeader = "CF-Timezone"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// location fields are null when the edge did not supply them.
type location struct {
	City     *string `json:"city"`
	Country  *string `json:"country"`
	Timezone *string `json:"timezone"`
}

// Serve handles GET /whoami.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	uierrors.WriteJSON(w, http.StatusOK, location{
		City:     header(r, CityHeader),
		Country:  header(r, CountryHeader),
		Timezone: header(r, TimezoneHeader),
	})
}

func header(r *http.Request, name string) *string {
	v := r.Header.Get(name)
	if v == "" {
		return nil
	}
	return &v
}
