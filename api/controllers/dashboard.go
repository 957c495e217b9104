package controllers

import (
	"net/http"

	"github.com/angeldelarosa/garagepos-backend/api/responses"
	"github.com/angeldelarosa/garagepos-backend/internal/projection"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
)

// Dashboard serves the projected storefront snapshot. A cold projector is
// rebuilt on demand so the first request after boot is still answered.
func Dashboard(projector *projection.Projector, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := projector.Snapshot()
		if snapshot.GeneratedAt.IsZero() {
			rebuilt, err := projector.Rebuild(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			snapshot = rebuilt
		}
		responses.WriteSuccess(w, snapshot)
	}
}
