// Package server exposes the case intake and clerk dashboard JSON APIs.
// Submission and document retrieval are public; everything under
// /api/dashboard requires a verified bearer token.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gaevic/internal/cases"
	"gaevic/internal/engine"
	"gaevic/internal/payments"
	"gaevic/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

func init() {
	decoder.RegisterCustomTypeFunc(func(vals []string) (interface{}, error) {
		return time.Parse("2006-01-02", vals[0])
	}, time.Time{})
}

type Service struct {
	logger   *logrus.Logger
	config   *types.Config
	cases    *cases.Service
	engine   *engine.Engine
	payments *payments.Service

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	caseService *cases.Service,
	eng *engine.Engine,
	paymentService *payments.Service,
	jwkCache *jwk.Cache,
	jwksURL string,
) *Service {
	mux := flow.New()

	s := &Service{
		logger:   logger,
		config:   config,
		cases:    caseService,
		engine:   eng,
		payments: paymentService,

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.RequestID)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/api/cases", s.handleSubmitCase, http.MethodPost)
	r.HandleFunc("/api/cases/:case_id", s.handleGetCase, http.MethodGet)
	r.HandleFunc("/api/cases/:case_id/documents", s.handleListDocuments, http.MethodGet)
	r.HandleFunc("/api/cases/:case_id/documents/:filename", s.handleGetDocument, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/dashboard/cases", s.handleListCases, http.MethodGet)
		r.HandleFunc("/api/dashboard/stats", s.handleStats, http.MethodGet)
		r.HandleFunc("/api/dashboard/cases/:case_id", s.handleUpdateCase, http.MethodPatch)
		r.HandleFunc("/api/dashboard/cases/:case_id/case-number", s.handleAssignCaseNumber, http.MethodPost)
		r.HandleFunc("/api/dashboard/cases/:case_id/archive", s.handleArchiveCase, http.MethodGet)
		r.HandleFunc("/api/dashboard/cases/:case_id/filing-fee", s.handleFilingFee, http.MethodPost)
		r.HandleFunc("/api/dashboard/export", s.handleExportCSV, http.MethodGet)
		r.HandleFunc("/api/dashboard/reports/monthly", s.handleMonthlyReport, http.MethodGet)
		r.HandleFunc("/api/dashboard/reconcile", s.handleReconcile, http.MethodPost)
	})
}

func (s *Service) clerkFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(contextKeyEmail).(string); ok && email != "" {
		return email
	}
	if userID, ok := ctx.Value(contextKeyUserID).(string); ok {
		return userID
	}
	return ""
}
