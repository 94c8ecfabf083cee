package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func getHealth(t *testing.T, h *HealthStatus) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	return rec.Code, body
}

func TestHealthzOptionalDepsAbsent(t *testing.T) {
	h := NewHealthStatus(false, false)

	code, body := getHealth(t, h)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestHealthzExchangeDownDegrades(t *testing.T) {
	h := NewHealthStatus(false, false)
	h.SetExchangeOK(false)

	code, body := getHealth(t, h)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if body["status"] != "degraded" || body["exchange_ok"] != false {
		t.Errorf("body = %v", body)
	}

	h.SetExchangeOK(true)
	code, _ = getHealth(t, h)
	if code != http.StatusOK {
		t.Errorf("status after recovery = %d, want 200", code)
	}
}

func TestHealthzEnabledDepStartsUnverified(t *testing.T) {
	// With redis configured, health starts degraded until the first
	// successful liveness probe.
	h := NewHealthStatus(true, false)
	code, body := getHealth(t, h)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 before first probe", code)
	}
	if body["redis_enabled"] != true || body["redis_connected"] != false {
		t.Errorf("body = %v", body)
	}
}
