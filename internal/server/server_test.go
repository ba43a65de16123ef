package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-runaway/internal/config"
)

func TestHealthRoute(t *testing.T) {
	s := NewServer(config.Load(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestRecordingRoutesRegistered(t *testing.T) {
	s := NewServer(config.Load(), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/recording/start", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		t.Fatalf("expected recording routes registered")
	}
}
