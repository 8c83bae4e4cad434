package httpapi

import (
	"net/http"

	"github.com/wcckavaliers/scorebook/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	activity ActivityRecorder,
) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerScorecardRoutes(mux, handler)
	registerTeamRoutes(mux, handler)

	chain := recoverPanic(logger, mux)
	chain = CORS(corsAllowedOrigins, chain)
	chain = ActivityTracking(activity, chain)
	chain = RequestLogging(logger, chain)
	return RequestTracing(chain)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "panic recovered", "panic", rec)
				writeInternalError(r.Context(), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
