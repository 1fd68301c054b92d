package runtime

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func healthProbeTarget(t *testing.T, handler http.Handler) (string, int) {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	host, portStr, err := net.SplitHostPort(ts.Listener.Addr().String())
	if err != nil {
		t.Fatalf("splitting listener address: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing port %q: %v", portStr, err)
	}
	return host, port
}

func TestCheckHealth(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		host, port := healthProbeTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("probed %q, want /health", r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		if err := CheckHealth(context.Background(), host, port); err != nil {
			t.Fatalf("CheckHealth: %v", err)
		}
	})

	t.Run("unhealthy", func(t *testing.T) {
		t.Parallel()
		host, port := healthProbeTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"kind":"unhealthy","message":"row cache is corrupted"}`, http.StatusServiceUnavailable)
		}))
		err := CheckHealth(context.Background(), host, port)
		if err == nil {
			t.Fatal("expected an error for a 503 probe")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		// Grab a free port and close the listener so nothing serves it.
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("reserving a port: %v", err)
		}
		port := listener.Addr().(*net.TCPAddr).Port
		listener.Close()

		if err := CheckHealth(context.Background(), "127.0.0.1", port); err == nil {
			t.Fatal("expected an error for an unreachable server")
		}
	})
}
