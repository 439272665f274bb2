// Package views renders the HTML pages: the home page, the add-school
// form and the schools directory.
//
// Templates are embedded into the binary and parsed once at start-up.
// Each page is layout.html plus one file defining "title" and "content".
package views

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"
	"github.com/aanand-mishra/schools-api/internal/upload"
)

//go:embed templates/*.html
var templateFS embed.FS

// Patterns mirrored into the form's pattern attributes. The server
// validates independently; these only give the user early feedback.
const (
	formEmailPattern = `[^\s@]+@[^\s@]+\.[^\s@]+`
	formPhonePattern = `\+?[1-9]\d{0,15}`
)

// Image rendering kinds, chosen from the stored reference.
const (
	ImageInline = "inline"
	ImageRemote = "remote"
	ImageLocal  = "local"
	ImageNone   = "none"
)

var funcs = template.FuncMap{
	"imageKind": ImageKind,
	"deref":     deref,
	"inlineSrc": inlineSrc,
}

var (
	homePage    = mustPage("home.html")
	addPage     = mustPage("add.html")
	schoolsPage = mustPage("schools.html")
)

func mustPage(name string) *template.Template {
	return template.Must(
		template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name),
	)
}

type addData struct {
	EmailPattern string
	PhonePattern string
	MaxImageMiB  int
}

type schoolsData struct {
	Schools []types.SchoolSummary
	Error   string
}

// Home handles GET /.
func Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, homePage, nil)
	}
}

// AddSchool handles GET /addSchool.
// The form posts to /schools with fetch and shows the JSON message it
// gets back.
func AddSchool() http.HandlerFunc {
	data := addData{
		EmailPattern: formEmailPattern,
		PhonePattern: formPhonePattern,
		MaxImageMiB:  upload.MaxImageBytes >> 20,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, addPage, data)
	}
}

// ShowSchools handles GET /showSchools.
// Renders the directory straight from the store; a store failure renders
// the error state with status 500.
func ShowSchools(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schools, err := store.GetSchools(r.Context())
		if err != nil {
			slog.Error("error getting schools for directory", slog.String("error", err.Error()))
			render(w, http.StatusInternalServerError, schoolsPage, schoolsData{Error: "Failed to fetch schools"})
			return
		}

		render(w, http.StatusOK, schoolsPage, schoolsData{Schools: schools})
	}
}

// ImageKind decides how a card renders its image reference.
func ImageKind(ref *string) string {
	if ref == nil {
		return ImageNone
	}

	switch s := strings.TrimSpace(*ref); {
	case s == "":
		return ImageNone
	case strings.HasPrefix(s, "data:"):
		if strings.HasPrefix(s, "data:image/") {
			return ImageInline
		}
		return ImageNone
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return ImageRemote
	default:
		return ImageLocal
	}
}

func deref(ref *string) string {
	if ref == nil {
		return ""
	}
	return *ref
}

// inlineSrc marks an image data URI as safe for a src attribute;
// html/template would otherwise replace it. Only called for ImageInline.
func inlineSrc(ref *string) template.URL {
	return template.URL(deref(ref))
}

// render executes t into a buffer first so a template error can still
// produce a clean 500 instead of a half-written page.
func render(w http.ResponseWriter, status int, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		slog.Error("error rendering page", slog.String("template", t.Name()), slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
