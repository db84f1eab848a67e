package http

import (
	"net/http"
	"strings"
)

// RouterConfig lists the handlers to mount. Nil handlers leave their routes
// unregistered.
type RouterConfig struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Medications *MedicationHandler
	Reminders   *ReminderHandler
	Middleware  []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP route table.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Auth != nil {
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
	}

	if cfg.Users != nil {
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Users.Register(w, r)
		})
		mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.GetProfile(w, r)
			case http.MethodPut:
				cfg.Users.UpdateProfile(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})
	}

	if cfg.Medications != nil {
		mux.HandleFunc("/medications", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Medications.List(w, r)
			case http.MethodPost:
				cfg.Medications.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/medications/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/medications/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Medications.Get(w, r, id)
			case http.MethodPut:
				cfg.Medications.Update(w, r, id)
			case http.MethodDelete:
				cfg.Medications.Delete(w, r, id)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Reminders != nil {
		mux.HandleFunc("/reminders", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reminders.List(w, r)
		})
		mux.HandleFunc("/reminders/generate", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Reminders.Generate(w, r)
		})
		mux.HandleFunc("/reminders/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/reminders/")
			id, action, found := strings.Cut(rest, "/")
			if !found || id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			switch action {
			case "complete":
				cfg.Reminders.Complete(w, r, id)
			case "uncomplete":
				cfg.Reminders.Uncomplete(w, r, id)
			default:
				http.NotFound(w, r)
			}
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

// IsPublicRoute reports whether a request may bypass session authentication.
func IsPublicRoute(r *http.Request) bool {
	if r.Method == http.MethodPost && r.URL.Path == "/users" {
		return true
	}
	if r.Method == http.MethodPost && r.URL.Path == "/sessions" {
		return true
	}
	return false
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
