package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouter_ReminderRoutes(t *testing.T) {
	stub := &stubReminderService{}
	router := NewRouter(RouterConfig{
		Reminders: NewReminderHandler(stub, 7, nil),
	})

	serve := func(method, target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authenticatedRequest(method, target, ""))
		return rec
	}

	t.Run("generate dispatches", func(t *testing.T) {
		if rec := serve(http.MethodPost, "/reminders/generate"); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("wrong method is 405", func(t *testing.T) {
		rec := serve(http.MethodGet, "/reminders/generate")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
			t.Errorf("expected Allow: POST, got %q", allow)
		}
	})

	t.Run("complete dispatches with id", func(t *testing.T) {
		if rec := serve(http.MethodPost, "/reminders/occ-1/complete"); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.completedID != "occ-1" {
			t.Errorf("expected occ-1 extracted from path, got %q", stub.completedID)
		}
	})

	t.Run("uncomplete dispatches with id", func(t *testing.T) {
		if rec := serve(http.MethodPost, "/reminders/occ-2/uncomplete"); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.uncompletedID != "occ-2" {
			t.Errorf("expected occ-2 extracted from path, got %q", stub.uncompletedID)
		}
	})

	t.Run("unknown action is 404", func(t *testing.T) {
		if rec := serve(http.MethodPost, "/reminders/occ-1/archive"); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("bare id is 404", func(t *testing.T) {
		if rec := serve(http.MethodPost, "/reminders/occ-1"); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("list dispatches", func(t *testing.T) {
		if rec := serve(http.MethodGet, "/reminders?date=2025-03-03"); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestRouter_UnmountedRoutes(t *testing.T) {
	router := NewRouter(RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reminders", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unmounted route, got %d", rec.Code)
	}
}
