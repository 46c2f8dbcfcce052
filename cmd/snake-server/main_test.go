package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/gridsnake/core"
	"github.com/signalsfoundry/gridsnake/internal/logging"
	"github.com/signalsfoundry/gridsnake/internal/spectator"
	"github.com/signalsfoundry/gridsnake/model"
)

func TestSnakeServerStartupSmoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen http: %v", err)
	}

	cfg := Config{
		Game:          core.DefaultConfig(),
		Seed:          3,
		ListenAddress: lis.Addr().String(),
		HTTPAddress:   httpLis.Addr().String(),
		TickInterval:  5 * time.Millisecond,
		Accelerated:   false,
	}
	log := logging.New(logging.Config{Level: "warn", Format: "text"})

	runCtx, stop := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() {
		errCh <- run(runCtx, cfg, log, lis, httpLis)
	}()

	client, err := spectator.Dial(ctx, cfg.ListenAddress)
	if err != nil {
		t.Fatalf("spectator.Dial: %v", err)
	}
	defer client.Close()

	var snap model.Snapshot
	for snap.Tick < 3 {
		select {
		case <-ctx.Done():
			t.Fatalf("no progress before timeout, last snapshot %+v", snap)
		case <-time.After(10 * time.Millisecond):
		}
		snap, err = client.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
	}
	if snap.Width != cfg.Game.Width || snap.Height != cfg.Game.Height {
		t.Fatalf("snapshot grid = %dx%d, want %dx%d", snap.Width, snap.Height, cfg.Game.Width, cfg.Game.Height)
	}

	if got := gatheredValue(t, "snake_ticks_total"); got < 3 {
		t.Fatalf("snake_ticks_total = %v, want >= 3", got)
	}

	resp, err := http.Get("http://" + cfg.HTTPAddress + "/snapshot")
	if err != nil {
		t.Fatalf("GET /snapshot: %v", err)
	}
	var fromHTTP model.Snapshot
	err = json.NewDecoder(resp.Body).Decode(&fromHTTP)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode /snapshot: %v", err)
	}
	if fromHTTP.Tick < snap.Tick {
		t.Fatalf("/snapshot tick = %d, want >= %d", fromHTTP.Tick, snap.Tick)
	}

	resp, err = http.Get("http://" + cfg.HTTPAddress + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "snake_ticks_total") {
		t.Fatalf("/metrics missing snake_ticks_total")
	}

	stop()
	if err := <-errCh; err != nil {
		t.Fatalf("server returned error: %v", err)
	}
}

func gatheredValue(t *testing.T, name string) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
		}
	}
	return 0
}

func TestSplitList(t *testing.T) {
	got := splitList(" http://a.example , ,* ")
	if len(got) != 2 || got[0] != "http://a.example" || got[1] != "*" {
		t.Fatalf("splitList = %q, want [http://a.example *]", got)
	}
	if got := splitList(""); got != nil {
		t.Fatalf("splitList(\"\") = %q, want nil", got)
	}
}
