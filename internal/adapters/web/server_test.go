package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"recruitbot/internal/reminder"
)

type readyFlag bool

func (r readyFlag) IsReady() bool { return bool(r) }

type staticEscalations []reminder.SessionInfo

func (s staticEscalations) Active() []reminder.SessionInfo { return s }

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name  string
		ready bool
		want  int
	}{
		{"not ready", false, http.StatusServiceUnavailable},
		{"ready", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(":0", readyFlag(tt.ready), staticEscalations(nil))
			if rec := get(t, s, "/healthz"); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestEscalations(t *testing.T) {
	s := NewServer(":0", readyFlag(true), staticEscalations{
		{EventID: "e1", Title: "Cleanup", Remaining: 2},
	})
	rec := get(t, s, "/escalations")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Count       int                    `json:"count"`
		Escalations []reminder.SessionInfo `json:"escalations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || body.Escalations[0].EventID != "e1" || body.Escalations[0].Remaining != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestUnknownRoute(t *testing.T) {
	s := NewServer(":0", readyFlag(true), staticEscalations(nil))
	if rec := get(t, s, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
