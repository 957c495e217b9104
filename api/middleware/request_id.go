package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags every request with an ID for log correlation. An incoming
// X-Request-Id is trusted and propagated; otherwise one is minted. The ID is
// echoed on the response and attached to the request logger context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
