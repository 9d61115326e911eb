package webhook

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kompox/nbcertsync/internal/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// accessLog attaches a reqId logger to the request context and emits one
// line per request. It wraps the whole router so unmatched requests are
// logged too.
func (s *Server) accessLog(router *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startAt := time.Now()
		route := "unmatched"
		var m mux.RouteMatch
		if router.Match(r, &m) && m.Route != nil {
			route = m.Route.GetName()
		}

		logger := s.logger.With("reqId", uuid.NewString())
		ctx := logging.WithLogger(r.Context(), logger)
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		router.ServeHTTP(rec, r.WithContext(ctx))

		elapsed := time.Since(startAt)
		s.opts.Metrics.ObserveHTTP(route, rec.code, elapsed)
		logger.Info(ctx, "HTTP", "method", r.Method, "path", r.URL.Path, "route", route, "status", rec.code, "elapsed", elapsed.Seconds())
	})
}
