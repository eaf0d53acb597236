package httpx

import (
	"io"
	"net/http"
)

const healthResponse = `{"status":"ok","service":"atelier-api"}`

// healthHandler answers readiness and liveness probes. HEAD requests get the
// status line only.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	// A write failure means the client is gone; nothing to recover.
	_, _ = io.WriteString(w, healthResponse)
}
