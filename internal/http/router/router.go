// Package router wires every route of the application onto one ServeMux.
package router

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/http/handlers/school"
	"github.com/aanand-mishra/schools-api/internal/http/middleware"
	"github.com/aanand-mishra/schools-api/internal/http/views"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/upload"
	"github.com/aanand-mishra/schools-api/internal/utils/response"
)

// NewRouter registers the API, the HTML pages and, in local upload mode,
// the image directory. The returned handler already carries panic
// recovery and CORS.
func NewRouter(store storage.Storage, sink upload.Sink, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	create := school.New(store, sink)
	list := school.GetList(store)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// REST API. Method dispatch happens here rather than in the patterns
	// so unsupported methods get a JSON 405 instead of the mux's plain
	// text one.
	mux.HandleFunc("/schools", middleware.WithLogging(byMethod(map[string]http.HandlerFunc{
		http.MethodPost: create,
		http.MethodGet:  list,
		http.MethodHead: list,
	})))
	mux.HandleFunc("GET /schools/{id}", middleware.WithLogging(school.GetByID(store)))

	// Paths used by the first version of the form.
	mux.HandleFunc("/api/schools/add", middleware.WithLogging(create))
	mux.HandleFunc("/api/schools/get", middleware.WithLogging(list))

	// Pages
	mux.HandleFunc("GET /{$}", middleware.WithLogging(views.Home()))
	mux.HandleFunc("GET /addSchool", middleware.WithLogging(views.AddSchool()))
	mux.HandleFunc("GET /showSchools", middleware.WithLogging(views.ShowSchools(store)))

	if cfg.Upload.Mode == config.UploadModeLocal {
		prefix := "/" + strings.Trim(cfg.Upload.URLPrefix, "/") + "/"
		files := http.StripPrefix(prefix, http.FileServer(noDirListing{http.Dir(cfg.Upload.Dir)}))
		mux.Handle("GET "+prefix, files)
	}

	return middleware.Recover(middleware.CORS(mux))
}

func byMethod(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	allowed := make([]string, 0, len(handlers))
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodPost} {
		if _, ok := handlers[m]; ok {
			allowed = append(allowed, m)
		}
	}
	allow := strings.Join(allowed, ", ")

	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.Method]
		if !ok {
			response.MethodNotAllowed(w, allow)
			return
		}
		h(w, r)
	}
}

// noDirListing hides directory indexes from the image file server.
type noDirListing struct {
	root http.FileSystem
}

func (n noDirListing) Open(name string) (http.File, error) {
	f, err := n.root.Open(name)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
