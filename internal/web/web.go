package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/FreeRunner34/FreeRunner34.github.io/internal/common/logger"
	"github.com/FreeRunner34/FreeRunner34.github.io/internal/common/session"
	"github.com/FreeRunner34/FreeRunner34.github.io/internal/workorder"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the HTML surface: list/search, detail, create, edit,
// delete, login/logout, CSV export and demo seeding.
type Handler struct {
	svc      *workorder.Service
	sessions *session.Manager
	log      logger.Logger
	tmpl     *template.Template
}

func NewHandler(svc *workorder.Service, sessions *session.Manager, log logger.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Handler{
		svc:      svc,
		sessions: sessions,
		log:      log,
		tmpl:     tmpl,
	}, nil
}

// Register mounts all routes on the mux. Reads are public; every mutating
// route and the export pass through the login gate.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/login", h.handleLogin)
	mux.HandleFunc("/logout", h.handleLogout)
	mux.HandleFunc("/new", h.requireLogin(h.handleCreate))
	mux.HandleFunc("/wo/", h.handleWorkOrder)
	mux.HandleFunc("/export.csv", h.requireLogin(h.handleExport))
	mux.HandleFunc("/seed-demo", h.requireLogin(h.handleSeedDemo))
	mux.HandleFunc("/healthz", h.handleHealthz)
}

// pageData is the single payload shape all templates render from.
type pageData struct {
	Items    []workorder.WorkOrder
	Item     *workorder.WorkOrder
	Query    string
	Next     string
	Statuses []string
	Flashes  []session.Flash
	LoggedIn bool
}

// HasStatus reports whether s is one of the conventional status values; the
// edit form uses it to keep a free-text status selectable.
func (pageData) HasStatus(s string) bool {
	for _, known := range workorder.Statuses {
		if known == s {
			return true
		}
	}
	return false
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	data.Statuses = workorder.Statuses
	data.Flashes = h.sessions.TakeFlashes(r)
	data.LoggedIn = h.sessions.LoggedIn(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.log.Errorf("render %s: %v", name, err)
	}
}

// requireLogin is the auth gate: unauthenticated requests are flashed and
// redirected to the login form carrying the originally requested path.
func (h *Handler) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.sessions.LoggedIn(r) {
			h.sessions.AddFlash(w, r, "error", "Please log in first.")
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
			return
		}
		next(w, r)
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	// The root pattern catches everything unmatched; anything but "/" is
	// an unknown path.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	items, err := h.svc.List(r.Context(), query)
	if err != nil {
		h.log.Errorf("list work orders: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "index.html", pageData{Items: items, Query: query})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))

	switch r.Method {
	case http.MethodGet:
		h.render(w, r, "login.html", pageData{Next: next})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if err := h.sessions.Login(w, r, r.PostForm.Get("password")); err != nil {
			h.sessions.AddFlash(w, r, "error", "Invalid password.")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.sessions.AddFlash(w, r, "success", "Logged in.")
		if next == "" {
			next = "/"
		}
		http.Redirect(w, r, next, http.StatusFound)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w, r)
	h.sessions.AddFlash(w, r, "success", "Logged out.")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.render(w, r, "create.html", pageData{})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_, err := h.svc.Create(r.Context(), workorder.CreateInput{
			CustomerName: r.PostForm.Get("customer_name"),
			Vehicle:      r.PostForm.Get("vehicle"),
			Complaint:    r.PostForm.Get("complaint"),
			Status:       r.PostForm.Get("status"),
		})
		if err != nil {
			if workorder.IsValidation(err) {
				h.sessions.AddFlash(w, r, "error", "Customer name, vehicle, and complaint are required.")
				http.Redirect(w, r, "/new", http.StatusFound)
				return
			}
			h.log.Errorf("create work order: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		h.sessions.AddFlash(w, r, "success", "Work order created.")
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleWorkOrder dispatches /wo/{id}, /wo/{id}/edit and /wo/{id}/delete.
// A malformed id never reaches a handler; it is a plain 404.
func (h *Handler) handleWorkOrder(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "wo" {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 2 {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.showDetail(w, r, id)
		return
	}

	switch parts[2] {
	case "edit":
		h.requireLogin(func(w http.ResponseWriter, r *http.Request) {
			h.editWorkOrder(w, r, id)
		})(w, r)
	case "delete":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.requireLogin(func(w http.ResponseWriter, r *http.Request) {
			h.deleteWorkOrder(w, r, id)
		})(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) showDetail(w http.ResponseWriter, r *http.Request, id int64) {
	wo, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, workorder.ErrNotFound) {
			h.sessions.AddFlash(w, r, "error", "Work order not found.")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		h.log.Errorf("get work order %d: %v", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "detail.html", pageData{Item: wo})
}

func (h *Handler) editWorkOrder(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		wo, err := h.svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, workorder.ErrNotFound) {
				h.sessions.AddFlash(w, r, "error", "Work order not found.")
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			h.log.Errorf("get work order %d: %v", id, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		h.render(w, r, "edit.html", pageData{Item: wo})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		// Only fields present in the form are patched; absent fields
		// keep their stored values.
		var patch workorder.Patch
		if v, ok := formValue(r, "customer_name"); ok {
			patch.CustomerName = &v
		}
		if v, ok := formValue(r, "vehicle"); ok {
			patch.Vehicle = &v
		}
		if v, ok := formValue(r, "complaint"); ok {
			patch.Complaint = &v
		}
		if v, ok := formValue(r, "status"); ok {
			patch.Status = &v
		}

		if _, err := h.svc.Update(r.Context(), id, patch); err != nil {
			if errors.Is(err, workorder.ErrNotFound) {
				h.sessions.AddFlash(w, r, "error", "Work order not found.")
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			h.log.Errorf("update work order %d: %v", id, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		h.sessions.AddFlash(w, r, "success", "Work order updated.")
		http.Redirect(w, r, fmt.Sprintf("/wo/%d", id), http.StatusFound)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) deleteWorkOrder(w http.ResponseWriter, r *http.Request, id int64) {
	existed, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.log.Errorf("delete work order %d: %v", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if existed {
		h.sessions.AddFlash(w, r, "success", "Work order deleted.")
	} else {
		h.sessions.AddFlash(w, r, "error", "Work order not found.")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename=work_orders.csv`)

	flusher, _ := w.(http.Flusher)
	if _, err := h.svc.ExportCSV(r.Context(), &flushWriter{w: w, f: flusher}); err != nil {
		// Headers are out; all that is left is logging.
		h.log.Errorf("export csv: %v", err)
	}
}

func (h *Handler) handleSeedDemo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, err := h.svc.SeedDemo(r.Context()); err != nil {
		h.log.Errorf("seed demo: %v", err)
		h.sessions.AddFlash(w, r, "error", "Seeding demo data failed.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.sessions.AddFlash(w, r, "success", "Demo data seeded.")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// formValue reports a field's trimmed-as-submitted value and whether the
// form carried it at all.
func formValue(r *http.Request, key string) (string, bool) {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// safeNext only accepts local redirect targets; anything else falls back to
// the index so login can't bounce users to another site.
func safeNext(next string) string {
	if next == "" {
		return ""
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}

// flushWriter pushes each CSV row to the client as it is written.
type flushWriter struct {
	w http.ResponseWriter
	f http.Flusher
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if fw.f != nil {
		fw.f.Flush()
	}
	return n, err
}
