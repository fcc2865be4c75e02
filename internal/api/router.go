// Package api serves the ledger over HTTP. Every route runs the same tracker
// operations as the CLI.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/secure"

	"github.com/cleared-dev/grassjelly/internal/report"
	"github.com/cleared-dev/grassjelly/internal/tracker"
)

const maxBodyBytes = 1 << 20

// Params groups dependencies for building the router.
type Params struct {
	Tracker   *tracker.Service
	Logger    *slog.Logger
	Formatter *report.Formatter
	Location  *time.Location
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit      int
	RequestTimeout time.Duration
	// Production enables the HTTPS redirect.
	Production bool
}

type handler struct {
	svc      *tracker.Service
	log      *slog.Logger
	money    *report.Formatter
	loc      *time.Location
	validate *validator.Validate
}

// NewRouter constructs the chi router with the middleware stack.
func NewRouter(p Params) http.Handler {
	log := p.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	money := p.Formatter
	if money == nil {
		money, _ = report.NewFormatter("USD")
	}
	h := &handler{
		svc:      p.Tracker,
		log:      log,
		money:    money,
		loc:      p.Location,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	for _, mw := range middlewareStack(p, log) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", h.listGroups)
		r.Post("/", h.createGroup)
		r.Route("/{group}", func(r chi.Router) {
			r.Delete("/", h.deleteGroup)

			r.Get("/participants", h.listParticipants)
			r.Post("/participants", h.addParticipant)
			r.Delete("/participants/{name}", h.removeParticipant)

			r.Get("/bills", h.listBills)
			r.Post("/bills", h.stageBill)
			r.Post("/bills/commit", h.commitBills)
			r.Delete("/bills/{n}", h.discardBill)

			r.Get("/expenses", h.listExpenses)
			r.Post("/expenses", h.recordExpense)
			r.Delete("/expenses/{id}", h.cancelExpense)

			r.Get("/balances", h.balances)
			r.Get("/report", h.report)
		})
	})
	return r
}

func middlewareStack(p Params, log *slog.Logger) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
		SSLRedirect:           p.Production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !p.Production,
	})

	timeout := 30 * time.Second
	if p.RequestTimeout > 0 {
		timeout = p.RequestTimeout
	}

	mws := []func(http.Handler) http.Handler{
		chimw.RealIP,
		chimw.RequestID,
		requestLogger(log),
		chimw.Recoverer,
		chimw.Timeout(timeout),
		secureMiddleware.Handler,
	}
	if p.RateLimit > 0 {
		mws = append(mws, httprate.Limit(p.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}
	return mws
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()))
		})
	}
}
