// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/eventsnap/internal/auth"
	"github.com/tomtom215/eventsnap/internal/middleware"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Middleware *ChiMiddlewareConfig

	// MediaRoot, when set, is served read-only under /media for locally
	// stored thumbnails and watermarked copies.
	MediaRoot string
}

// NewRouter builds the HTTP surface.
func NewRouter(h *Handler, authMiddleware *auth.Middleware, cfg RouterConfig) http.Handler {
	mw := NewChiMiddleware(cfg.Middleware)
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.RequestLogger(middleware.DefaultSlowThreshold))
	r.Use(mw.CORS()) // CORS must be global to handle OPTIONS preflight

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(authMiddleware.Authenticate)

		r.Route("/photos", func(r chi.Router) {
			r.With(middleware.Compression).Get("/", h.SearchPhotos)
			r.With(mw.RateLimitUpload()).Post("/upload", h.UploadPhotos)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/download", h.DownloadPhoto)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Compression)
					r.Get("/", h.GetPhoto)
					r.Put("/tags", h.UpdateTags)
					r.Post("/tagged", h.TagUser)
					r.Post("/like", h.ToggleLike)
					r.Post("/comments", h.CreateComment)
					r.Get("/comments", h.ListComments)
					r.Post("/reprocess", h.ReprocessPhoto)
				})
			})
		})

		r.With(middleware.Compression).Get("/me/library", h.MyLibrary)
	})

	r.With(authMiddleware.Authenticate).Get("/ws", h.WebSocket)
	r.Handle("/metrics", promhttp.Handler())

	if cfg.MediaRoot != "" {
		fs := http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaRoot)))
		r.Handle("/media/*", noDirectoryListing(fs))
	}

	return r
}

// noDirectoryListing rejects directory paths before they reach the file
// server.
func noDirectoryListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
