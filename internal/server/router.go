// Package server implements the HTTP server and routing logic.
package server

import (
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"

	"github.com/maruel/wishlist/internal/server/handlers"
	"github.com/maruel/wishlist/internal/server/ratelimit"
	"github.com/maruel/wishlist/internal/storage"
)

// Config holds the HTTP server configuration.
type Config struct {
	storage.ServerConfig

	// Version is reported by /api/health.
	Version string
	// StaticDir holds the built frontend. Empty disables static serving.
	StaticDir string
	// CORSOrigin is the allowed browser origin. Empty allows any origin.
	CORSOrigin string
}

// Router is the HTTP handler of the application. Call Close to stop the
// rate limiter goroutines.
type Router struct {
	http.Handler
	limiters *ratelimit.Config
}

// Close releases the resources held by the router.
func (r *Router) Close() error {
	r.limiters.Close()
	return nil
}

// NewRouter creates and configures the HTTP router.
// Serves API endpoints at /api/* and the static frontend at /.
func NewRouter(svc *handlers.Services, cfg *Config) *Router {
	limiters := ratelimit.NewConfig(cfg.RateLimits.ReadRatePerMin, cfg.RateLimits.WriteRatePerMin)
	mux := &http.ServeMux{}

	hh := handlers.NewHealthHandler(svc, cfg.Version)
	sch := handlers.NewSchemaHandler()
	gh := handlers.NewGroupHandler(svc)
	nh := handlers.NewNameHandler(svc)
	ch := handlers.NewContentHandler(svc)
	ah := handlers.NewActivityHandler(svc)

	mux.Handle("GET /api/health", Wrap(hh.Health, cfg, limiters))
	mux.Handle("GET /api/schema", Wrap(sch.Schema, cfg, limiters))

	// Public group endpoints
	mux.Handle("GET /api/groups", Wrap(gh.ListGroups, cfg, limiters))
	mux.Handle("GET /api/{group}/names", Wrap(nh.GroupNames, cfg, limiters))
	mux.Handle("GET /api/{group}/content", Wrap(ch.GetGroupContent, cfg, limiters))
	mux.Handle("POST /api/{group}/content", Wrap(ch.SaveGroupContent, cfg, limiters))

	// Admin endpoints
	mux.Handle("GET /api/admin/groups", Wrap(gh.ListAdminGroups, cfg, limiters))
	mux.Handle("POST /api/admin/groups", Wrap(gh.ReplaceGroups, cfg, limiters))
	mux.Handle("GET /api/admin/{group}/names", Wrap(nh.GroupNames, cfg, limiters))
	mux.Handle("POST /api/admin/{group}/names", Wrap(nh.SetGroupNames, cfg, limiters))
	mux.Handle("GET /api/admin/activity", Wrap(ah.ListActivity, cfg, limiters))

	// Legacy endpoints operating on the default group
	mux.Handle("GET /api/names", Wrap(nh.Names, cfg, limiters))
	mux.Handle("GET /api/content", Wrap(ch.GetContent, cfg, limiters))
	mux.Handle("POST /api/content", Wrap(ch.SaveContent, cfg, limiters))
	mux.Handle("GET /api/admin/names", Wrap(nh.Names, cfg, limiters))
	mux.Handle("POST /api/admin/names", Wrap(nh.SetNames, cfg, limiters))

	mux.HandleFunc("/api/", handlers.NotFound)

	if cfg.StaticDir != "" {
		mux.Handle("/", NewSPAHandler(os.DirFS(cfg.StaticDir)))
	} else {
		mux.HandleFunc("/", http.NotFound)
	}

	h := Chain(mux, Recover, RequestContext, LogRequests, CORS(cfg.CORSOrigin))
	return &Router{Handler: h, limiters: limiters}
}

// SPAHandler serves a single-page application with fallback to index.html.
type SPAHandler struct {
	fs fs.FS
}

// NewSPAHandler creates a handler for the frontend files in fsys.
func NewSPAHandler(fsys fs.FS) *SPAHandler {
	return &SPAHandler{fs: fsys}
}

// ServeHTTP implements http.Handler for SPA routing.
//
// An existing file is served as is. "/admin" serves admin.html when present.
// Anything else without an extension gets index.html.
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Clean(r.URL.Path)[1:]
	if name != "" && isFile(h.fs, name) {
		if containsDot(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		http.FileServerFS(h.fs).ServeHTTP(w, r)
		return
	}
	if containsDot(r.URL.Path) {
		http.NotFound(w, r)
		return
	}
	page := "index.html"
	if name != "" && isFile(h.fs, name+".html") {
		page = name + ".html"
	}
	f, err := h.fs.Open(page)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = io.Copy(w, f)
}

func isFile(fsys fs.FS, name string) bool {
	fi, err := fs.Stat(fsys, name)
	return err == nil && !fi.IsDir()
}

// containsDot checks if the last path segment contains a dot (file extension).
func containsDot(p string) bool {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return false
		}
		if p[i] == '.' {
			return true
		}
	}
	return false
}
