package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/mentorag/pkg/service/document"
	"github.com/secmon-lab/mentorag/pkg/usecase"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

type Server struct {
	router       *chi.Mux
	uc           *usecase.UseCases
	apiToken     string
	maxDocBytes  int64
	requestLimit time.Duration
}

type Options func(*Server)

// WithAPIToken requires every /api request to carry the token as a bearer credential
func WithAPIToken(token string) Options {
	return func(s *Server) {
		s.apiToken = token
	}
}

// WithMaxDocumentBytes limits the size of an ingested document
func WithMaxDocumentBytes(n int64) Options {
	return func(s *Server) {
		s.maxDocBytes = n
	}
}

// WithRequestTimeout bounds the time spent on one request
func WithRequestTimeout(d time.Duration) Options {
	return func(s *Server) {
		s.requestLimit = d
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		uc:           uc,
		maxDocBytes:  document.DefaultMaxBytes,
		requestLimit: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		if s.apiToken != "" {
			r.Use(tokenAuth(s.apiToken))
		}
		r.Use(middleware.Timeout(s.requestLimit))

		r.Get("/search", s.search)

		r.Route("/mentors", func(r chi.Router) {
			r.Get("/", s.listMentors)
			r.Post("/", s.createMentor)

			r.Route("/{mentorID}", func(r chi.Router) {
				r.Get("/", s.getMentor)
				r.Get("/stats", s.mentorStats)

				r.Get("/contents", s.listContents)
				r.Post("/contents", s.ingestContent)
				r.Post("/contents/delete", s.deleteContents)
				r.Delete("/contents/{contentID}", s.deleteContent)

				r.Post("/ask", s.ask)
				r.Get("/conversations", s.listConversations)

				r.Get("/profile", s.showProfile)
				r.Post("/profile/approve", s.approveProfile)
				r.Post("/profile/reject", s.rejectProfile)
			})
		})

		r.Get("/conversations/{conversationID}/messages", s.listMessages)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
