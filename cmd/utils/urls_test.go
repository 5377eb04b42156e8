package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsLocalhost(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:8000", true},
		{"http://127.0.0.1:8000/api", true},
		{"http://[::1]:8000", true},
		{"https://law.example.com", false},
		{"::not a url", false},
	}
	for _, tt := range tests {
		if got := IsLocalhost(tt.url); got != tt.want {
			t.Errorf("IsLocalhost(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestHostOf(t *testing.T) {
	if got := HostOf("http://localhost:8000/api"); got != "localhost:8000" {
		t.Errorf("HostOf = %q", got)
	}
	if got := HostOf("not a url"); got != "not a url" {
		t.Errorf("HostOf fallback = %q", got)
	}
}

func TestReachable(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "web app", status: http.StatusOK},
		{name: "no root route", status: http.StatusNotFound},
		{name: "server error", status: http.StatusBadGateway, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()
			err := Reachable(context.Background(), srv.URL)
			if (err != nil) != tt.wantErr {
				t.Errorf("Reachable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("closed", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		if err := Reachable(context.Background(), srv.URL); err == nil {
			t.Error("Reachable(closed) = nil, want error")
		}
	})
}
