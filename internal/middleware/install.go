package middleware

import (
	"context"
	"net/http"
	"strings"
)

const InstallIDKey contextKey = "install_id"

// InstallID requires the X-Install-ID header on consumer routes. The
// client generates the id once and sends it with every request; it is
// the key all per-install state (ledger, view session, downloads)
// hangs off.
func InstallID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		installID := strings.TrimSpace(r.Header.Get("X-Install-ID"))
		if installID == "" {
			writeError(w, http.StatusBadRequest, "MISSING_INSTALL_ID", "X-Install-ID header is required", r)
			return
		}

		ctx := context.WithValue(r.Context(), InstallIDKey, installID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetInstallID extracts the install id from request context
func GetInstallID(ctx context.Context) string {
	id, _ := ctx.Value(InstallIDKey).(string)
	return id
}
