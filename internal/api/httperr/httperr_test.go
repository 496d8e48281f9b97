package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return env.Error
}

func TestWriteClientFault(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts/42", nil)

	Write(rec, req, NotFound("no such post"), "production", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Code != CodeNotFound {
		t.Errorf("expected code NOT_FOUND, got %s", body.Code)
	}
	if body.Message != "no such post" {
		t.Errorf("unexpected message %q", body.Message)
	}
}

func TestWriteRedirectHasNoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	rec.Header().Set("Set-Cookie", "session=abc")

	Write(rec, req, Redirect(http.StatusFound, "/login"), "production", nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login" {
		t.Errorf("expected Location /login, got %q", got)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
	if rec.Header().Get("Set-Cookie") == "" {
		t.Error("expected already-set cookie header to survive the redirect")
	}
}

func TestWriteServerFaultHidesDetailInProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	Write(rec, req, errors.New("pg: connection refused"), "production", []byte("stack"))

	body := decodeError(t, rec)
	if body.Message != "internal server error" {
		t.Errorf("expected generic message, got %q", body.Message)
	}
	if body.Stack != "" {
		t.Error("stack must not leak in production")
	}
}

func TestWriteServerFaultShowsDetailInDevelopment(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	Write(rec, req, errors.New("pg: connection refused"), "development", []byte("goroutine 1"))

	body := decodeError(t, rec)
	if body.Message == "internal server error" {
		t.Error("expected real message in development")
	}
	if body.Stack != "goroutine 1" {
		t.Errorf("expected stack in development, got %q", body.Stack)
	}
}

func TestValidationCarriesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", nil)

	Write(rec, req, Validation(map[string]string{"email": "already taken"}), "production", nil)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Fields["email"] != "already taken" {
		t.Errorf("expected field message, got %v", body.Fields)
	}
}

func TestTooManyRequestsSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)

	Write(rec, req, TooManyRequests(30*time.Second), "production", nil)

	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Errorf("expected Retry-After 30, got %q", got)
	}
}

func TestFromPassesThroughStructuredErrors(t *testing.T) {
	orig := Conflict("email taken")
	wrapped := From(orig)
	if wrapped != orig {
		t.Error("From should return the original *Error")
	}
	if got := From(errors.New("boom")); got.Status != http.StatusInternalServerError {
		t.Errorf("unknown errors map to 500, got %d", got.Status)
	}
}
