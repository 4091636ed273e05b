package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/utils/errutil"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

// requestLogger puts a logger carrying the request ID into the request context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenAuth rejects requests without the expected bearer token
func tokenAuth(token string) func(http.Handler) http.Handler {
	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				errutil.HandleHTTP(r.Context(), w, goerr.New("missing bearer token"), http.StatusUnauthorized, "Authentication required")
				return
			}

			if subtle.ConstantTimeCompare([]byte(given), expected) != 1 {
				errutil.HandleHTTP(r.Context(), w, goerr.New("invalid bearer token"), http.StatusUnauthorized, "Invalid authentication token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
