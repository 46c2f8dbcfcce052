// Package livefeed exposes game snapshots over HTTP: a JSON endpoint and a
// WebSocket stream that pushes every new tick.
package livefeed

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/signalsfoundry/gridsnake/internal/logging"
	"github.com/signalsfoundry/gridsnake/model"
)

// DefaultPollInterval is how often the stream checks for a new tick.
const DefaultPollInterval = 50 * time.Millisecond

const writeTimeout = 5 * time.Second

// SnapshotSource hands out consistent game snapshots.
type SnapshotSource interface {
	Snapshot() model.Snapshot
}

// Options configures the router.
type Options struct {
	// Metrics is mounted at /metrics when set.
	Metrics        http.Handler
	// PollInterval defaults to DefaultPollInterval.
	PollInterval   time.Duration
	// AllowedOrigins lists Origin header values accepted on /ws. Empty means
	// same-origin only; "*" accepts any origin. The feed is read-only either way.
	AllowedOrigins []string
	Log            logging.Logger
}

// NewRouter serves GET /snapshot, GET /ws and, optionally, GET /metrics.
func NewRouter(src SnapshotSource, opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = logging.Noop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/snapshot", snapshotHandler(src, opts.Log))
	r.Get("/ws", streamHandler(src, newUpgrader(opts.AllowedOrigins), opts.PollInterval, opts.Log))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	return r
}

func snapshotHandler(src SnapshotSource, log logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(src.Snapshot()); err != nil {
			log.Warn(r.Context(), "write snapshot failed", logging.Err(err))
		}
	}
}

func newUpgrader(origins []string) *websocket.Upgrader {
	u := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
	if len(origins) == 0 {
		// nil CheckOrigin is gorilla's same-origin check.
		return u
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimSuffix(o, "/")] = true
	}
	u.CheckOrigin = func(r *http.Request) bool {
		if allowed["*"] {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
	return u
}

// streamHandler pushes a snapshot whenever the tick changes. The final
// snapshot of a finished game is sent once, then the connection is closed.
func streamHandler(src SnapshotSource, upgrader *websocket.Upgrader, interval time.Duration, log logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn(r.Context(), "websocket upgrade failed", logging.Err(err))
			return
		}
		defer conn.Close()

		ctx := r.Context()
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		sent := false
		var lastTick uint64
		for {
			snap := src.Snapshot()
			if !sent || snap.Tick != lastTick {
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(snap); err != nil {
					log.Debug(ctx, "websocket client gone", logging.Err(err))
					return
				}
				sent, lastTick = true, snap.Tick
			}
			if !snap.Running {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-closed:
				return
			case <-ticker.C:
			}
		}
	}
}
