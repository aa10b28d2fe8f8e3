package router

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// HealthCheck checks one dependency, e.g. a Redis PING or a pool Ping.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler reports "ok" when every check passes and "degraded" with
// 503 otherwise.
func healthHandler(checks map[string]HealthCheck, logger *logging.Logger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(names) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			resp.Checks = make(map[string]string, len(names))
			for _, name := range names {
				if err := checks[name](ctx); err != nil {
					logger.Warn("health check failed", "check", name, "error", err)
					resp.Checks[name] = "error"
					resp.Status = "degraded"
					status = http.StatusServiceUnavailable
					continue
				}
				resp.Checks[name] = "ok"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
