package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/podiumreach/speaker-directory-go/internal/constants"
	"github.com/podiumreach/speaker-directory-go/internal/directory"
	"github.com/podiumreach/speaker-directory-go/internal/store"
	"github.com/podiumreach/speaker-directory-go/internal/suggest"
)

type Config struct {
	Host string
	Port int
}

// Server exposes the directory over HTTP. The suggester and inquiry store
// are optional; their endpoints degrade when absent.
type Server struct {
	httpServer *http.Server
	directory  *directory.Service
	suggester  *suggest.Service
	inquiries  *store.InquiryStore
	logger     *zap.Logger
}

func New(cfg Config, dir *directory.Service, suggester *suggest.Service, inquiries *store.InquiryStore, logger *zap.Logger) *Server {
	s := &Server{
		directory: dir,
		suggester: suggester,
		inquiries: inquiries,
		logger:    logger,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  constants.ServerConfig.ReadTimeout,
		WriteTimeout: constants.ServerConfig.WriteTimeout,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/speakers", s.handleListSpeakers)
		r.Get("/speakers/featured", s.handleFeaturedSpeakers)
		r.Get("/speakers/search", s.handleSearchSpeakers)
		r.Get("/speakers/{slug}", s.handleGetSpeaker)

		r.Get("/industries", s.handleListIndustries)
		r.Get("/industries/{industry}/speakers", s.handleSpeakersByIndustry)

		r.Post("/suggest", s.handleSuggest)

		r.Post("/inquiries", s.handleCreateInquiry)
		r.Get("/inquiries", s.handleListInquiries)
		r.Get("/inquiries/{id}", s.handleGetInquiry)
		r.Patch("/inquiries/{id}/status", s.handleUpdateInquiryStatus)

		r.Get("/events", s.handleEvents)
	})

	return r
}

// requestLogger logs completed requests at debug, slow or failed ones at
// warn.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if ww.Status() >= http.StatusInternalServerError {
			s.logger.Warn("Request failed", fields...)
			return
		}
		s.logger.Debug("Request completed", fields...)
	})
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
