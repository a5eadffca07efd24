package mw

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtendWriteDeadline_Recorder(t *testing.T) {
	paths := []string{"/api/v1/catalog/convert", "/api/v1/health"}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			var called bool
			handler := ExtendWriteDeadline(time.Minute, "/catalog/convert")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))

			if !called {
				t.Error("expected handler to be called")
			}
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}
		})
	}
}

// A real server with a tiny WriteTimeout only delivers the slow response if
// the deadline was extended.
func TestExtendWriteDeadline_Server(t *testing.T) {
	handler := ExtendWriteDeadline(time.Second, "/catalog/convert")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		io.WriteString(w, "Title,Handle\n")
	}))

	srv := httptest.NewUnstartedServer(handler)
	srv.Config.WriteTimeout = 50 * time.Millisecond
	srv.Start()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/catalog/convert", "text/csv", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "Title,Handle\n" {
		t.Errorf("body = %q, want %q", body, "Title,Handle\n")
	}
}
