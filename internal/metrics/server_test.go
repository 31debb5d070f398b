package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestStartAsync_ServesMetrics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ConnectTotal.WithLabelValues(ResultOK).Inc()

	srv, err := StartAsync(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("StartAsync() error: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "exchangett_session_connect_total") {
		t.Fatalf("metrics output missing connect counter")
	}
}
