package http

import (
	"net/http"

	"github.com/collie-dev/collie/pkg/domain/model"
	"github.com/collie-dev/collie/pkg/domain/types"
)

// handleHealth handles health check requests. Liveness only: the
// review pipeline is stateless, so there is nothing else to probe.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	status := &model.HealthStatus{
		Status:  "healthy",
		Service: types.ServiceName,
		Version: types.Version,
	}
	writeJSON(r.Context(), w, http.StatusOK, status)
}
