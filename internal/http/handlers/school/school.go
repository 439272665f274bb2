// Package school contains the HTTP handlers for the School resource.
//
// Handlers are built by factory functions that take their dependencies
// and return an http.HandlerFunc closing over them:
//
//	mux.HandleFunc("/schools", school.New(store, sink))
//
// New(store, sink) runs once at start-up; the returned closure runs on
// every request.
package school

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"
	"github.com/aanand-mishra/schools-api/internal/upload"
	"github.com/aanand-mishra/schools-api/internal/utils/response"
)

const (
	// maxRequestBytes bounds a whole create request: one image plus
	// room for the text fields and multipart framing.
	maxRequestBytes = upload.MaxImageBytes + 1<<20

	multipartMemory = 32 << 20

	imageField = "image"
)

// CreatedResponse is the body of a successful create.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// ListResponse is the body of a directory listing.
type ListResponse struct {
	Schools []types.SchoolSummary `json:"schools"`
}

// New handles POST /schools (and POST /api/schools/add).
// Creates a school from a multipart/form-data body.
//
// Form fields: name, address, city, state, contact, email (or email_id),
// and an optional image file.
//
// Success response (201 Created):
//
//	{ "message": "School added successfully", "id": 7 }
//
// Error responses:
//
//	400 Bad Request  - unparseable form, missing or malformed field, bad image
//	405 Not Allowed  - any method but POST
//	500 Internal     - image could not be stored or database error
func New(store storage.Storage, sink upload.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.MethodNotAllowed(w, http.MethodPost)
			return
		}

		slog.Info("creating a school")

		// ── Step 1: Parse the multipart body ──────────────────────────
		if r.ContentLength > maxRequestBytes {
			response.WriteJSON(w, http.StatusBadRequest, response.Error(response.MsgTooLarge))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				response.WriteJSON(w, http.StatusBadRequest, response.Error(response.MsgTooLarge))
				return
			}
			slog.Info("rejected form", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusBadRequest, response.Error(response.MsgInvalidForm))
			return
		}
		defer r.MultipartForm.RemoveAll()

		// ── Step 2: Validate the text fields ──────────────────────────
		school := fromForm(r)
		if err := validate.Struct(school); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
				return
			}
			slog.Error("validator failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Error(response.MsgInternal))
			return
		}

		// ── Step 3: Validate and store the image, if any ──────────────
		file, hasImage, err := formImage(r)
		switch {
		case errors.Is(err, upload.ErrNotImage):
			response.WriteJSON(w, http.StatusBadRequest, response.Error(response.MsgNotImage))
			return
		case errors.Is(err, upload.ErrTooLarge):
			response.WriteJSON(w, http.StatusBadRequest, response.Error(response.MsgTooLarge))
			return
		case err != nil:
			slog.Error("error reading image", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Error(response.MsgInternal))
			return
		}

		if hasImage {
			ref, err := sink.Save(r.Context(), file)
			if err != nil {
				slog.Error("error storing image", slog.String("error", err.Error()))
				response.WriteJSON(w, http.StatusInternalServerError, response.Error(response.MsgInternal))
				return
			}
			school.Image = &ref
		}

		// ── Step 4: Persist ───────────────────────────────────────────
		id, err := store.CreateSchool(r.Context(), school)
		if err != nil {
			slog.Error("error creating school", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Error(response.MsgInternal))
			return
		}

		slog.Info("school created", slog.Int64("id", id))

		response.WriteJSON(w, http.StatusCreated, CreatedResponse{
			Message: response.MsgCreated,
			ID:      id,
		})
	}
}

// GetList handles GET /schools (and GET /api/schools/get).
// Returns every school, newest first.
//
// Success response (200 OK):
//
//	{ "schools": [ { "id": 2, "name": "...", "image": null }, ... ] }
//
// The array is empty, never null, when there are no schools.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			response.MethodNotAllowed(w, "GET, HEAD")
			return
		}

		slog.Info("getting all schools")

		schools, err := store.GetSchools(r.Context())
		if err != nil {
			slog.Error("error getting schools", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Error(response.MsgInternal))
			return
		}
		if schools == nil {
			schools = []types.SchoolSummary{}
		}

		response.WriteJSON(w, http.StatusOK, ListResponse{Schools: schools})
	}
}

// GetByID handles GET /schools/{id}.
// Returns the full record, including contact, email and created_at.
//
// Error responses:
//
//	400 Bad Request  - id is not a valid integer
//	404 Not Found    - no school with that id
//	500 Internal     - database error
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a school", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil || intID < 1 {
			response.WriteJSON(w, http.StatusBadRequest, response.Error(response.MsgInvalidID))
			return
		}

		school, err := store.GetSchoolByID(r.Context(), intID)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.Error(response.MsgNotFound))
			return
		}
		if err != nil {
			slog.Error("error getting school",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Error(response.MsgInternal))
			return
		}

		response.WriteJSON(w, http.StatusOK, school)
	}
}

// fromForm copies the trimmed text fields into a School. Older clients
// post the address as email_id, so that name is still accepted.
func fromForm(r *http.Request) types.School {
	field := func(name string) string {
		return strings.TrimSpace(r.FormValue(name))
	}

	email := field("email")
	if email == "" {
		email = field("email_id")
	}

	return types.School{
		Name:    field("name"),
		Address: field("address"),
		City:    field("city"),
		State:   field("state"),
		Contact: field("contact"),
		Email:   email,
	}
}

// formImage returns the inspected image part. hasImage is false when the
// request carries no file under the image field.
func formImage(r *http.Request) (file upload.File, hasImage bool, err error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[imageField]) == 0 {
		return upload.File{}, false, nil
	}

	file, err = upload.Inspect(r.MultipartForm.File[imageField][0])
	if err != nil {
		return upload.File{}, false, err
	}
	return file, true, nil
}
