package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/claes/mediaweb/internal/model"
)

// StatusFunc reports the backend status.
type StatusFunc func(ctx context.Context) (*model.Status, error)

type backendInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type healthBody struct {
	Status       string       `json:"status"`
	Backend      *backendInfo `json:"backend,omitempty"`
	BackendError string       `json:"backend_error,omitempty"`
}

// HealthHandler returns a simple health check endpoint. When status is not
// nil the backend is probed too; a failing backend is reported but does not
// fail the check.
func HealthHandler(status StatusFunc) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body := healthBody{Status: "ok"}
		if status != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			st, err := status(ctx)
			cancel()
			if err != nil {
				body.BackendError = err.Error()
			} else {
				body.Backend = &backendInfo{Name: st.Name, Version: st.Version}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(nethttp.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	})
}
