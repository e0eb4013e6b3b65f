package middleware

import (
	"net/http"

	"github.com/leadflowhq/leadflow-backend/pkg/config"
	"github.com/leadflowhq/leadflow-backend/pkg/logger"
)

// DemoUser stamps every request with the single bootstrap identity. There is
// no login surface; ownership scoping still runs against this id everywhere.
func DemoUser(cfg config.DemoConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithUserID(r.Context(), cfg.UserID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, cfg.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
