package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/PetoAdam/homenavi/household-service/internal/apperrors"
	"github.com/PetoAdam/homenavi/household-service/internal/household"
	"github.com/PetoAdam/homenavi/household-service/internal/store"
	"github.com/PetoAdam/homenavi/household-service/internal/tenancy"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Server struct {
	svc      *household.Service
	identity tenancy.Identifier
}

func NewServer(svc *household.Service, identity tenancy.Identifier) *Server {
	return &Server{svc: svc, identity: identity}
}

// Register mounts the household API under /api.
func (s *Server) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(tenancy.Middleware(s.identity))

			r.Get("/status", s.handleStatusGet)
			r.Patch("/status", s.handleStatusPatch)
			r.Post("/toggle", s.handleToggle)
			r.Post("/mode", s.handleMode)

			r.Route("/items", func(r chi.Router) {
				r.Get("/", s.handleItemsList)
				r.Post("/", s.handleItemsCreate)
				r.Patch("/{item_id}", s.handleItemsPatch)
				r.Delete("/{item_id}", s.handleItemsDelete)
			})

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", s.handleNotesList)
				r.Post("/", s.handleNotesCreate)
				r.Delete("/{note_id}", s.handleNotesDelete)
			})
		})
	})
}

type jsonErr struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, jsonErr{Error: msg, Code: status})
}

// writeServiceError maps the apperrors taxonomy onto status codes. Anything
// unrecognised is logged and reported as a 500 without details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		slog.Error("household request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON rejects unknown fields. An empty body decodes to the zero value.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// parseUUIDParam reports false for ids that cannot name any row.
func parseUUIDParam(r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func family(r *http.Request) string {
	f, _ := tenancy.FromContext(r.Context())
	return f
}

// Session

type loginRequest struct {
	FamilyName string `json:"family_name"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	name := strings.TrimSpace(req.FamilyName)
	if name == "" {
		if fromHeader, err := s.identity.Identify(r); err == nil {
			name = fromHeader
		}
	}
	f, err := s.svc.Resolve(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err, "family not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "family_name": f.Name})
}

// State

type statusPatchRequest struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

type toggleRequest struct {
	Device string `json:"device"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleStatusGet(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.Status(r.Context(), family(r))
	if err != nil {
		writeServiceError(w, r, err, "family not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleStatusPatch(w http.ResponseWriter, r *http.Request) {
	var req statusPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	f, err := s.svc.SetEnvironment(r.Context(), family(r), household.EnvironmentPatch{
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
	})
	if err != nil {
		writeServiceError(w, r, err, "family not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	lights, err := s.svc.ToggleDevice(r.Context(), family(r), strings.TrimSpace(req.Device))
	if err != nil {
		writeServiceError(w, r, err, "family not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "lights": lights})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	mode, err := s.svc.SetMode(r.Context(), family(r), strings.TrimSpace(req.Mode))
	if err != nil {
		writeServiceError(w, r, err, "family not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "mode": mode})
}

// Items

type itemCreateRequest struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Location string   `json:"location"`
	Category string   `json:"category"`
}

type itemPatchRequest struct {
	Quantity *float64 `json:"quantity"`
}

func (s *Server) handleItemsList(w http.ResponseWriter, r *http.Request) {
	filter := store.ItemFilter{Query: r.URL.Query().Get("q")}
	if raw := strings.TrimSpace(r.URL.Query().Get("max_quantity")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid max_quantity")
			return
		}
		filter.MaxQuantity = &v
	}
	rows, err := s.svc.ListItems(r.Context(), family(r), filter)
	if err != nil {
		writeServiceError(w, r, err, "family not found")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleItemsCreate(w http.ResponseWriter, r *http.Request) {
	var req itemCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	item, err := s.svc.AddItem(r.Context(), family(r), household.NewItem{
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Location: req.Location,
		Category: req.Category,
	})
	if err != nil {
		writeServiceError(w, r, err, "family not found")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleItemsPatch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(r, "item_id")
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	var req itemPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	item, err := s.svc.UpdateItemQuantity(r.Context(), family(r), id, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleItemsDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(r, "item_id")
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err := s.svc.DeleteItem(r.Context(), family(r), id); err != nil {
		writeServiceError(w, r, err, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

// Notes

type noteCreateRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleNotesList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.ListNotes(r.Context(), family(r))
	if err != nil {
		writeServiceError(w, r, err, "family not found")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleNotesCreate(w http.ResponseWriter, r *http.Request) {
	var req noteCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	note, err := s.svc.AddNote(r.Context(), family(r), req.Content)
	if err != nil {
		writeServiceError(w, r, err, "family not found")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleNotesDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(r, "note_id")
	if !ok {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err := s.svc.DeleteNote(r.Context(), family(r), id); err != nil {
		writeServiceError(w, r, err, "note not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}
