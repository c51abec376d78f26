package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/lo"
	"github.com/streampane/streampane/log"
	"github.com/streampane/streampane/playback"
)

// SnapshotFunc returns the current snapshot of every pane.
type SnapshotFunc func() []playback.Snapshot

// Router serves /metrics, /panes and /panes/{channel}.
func Router(m *Metrics, snapshots SnapshotFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/metrics", m.Handler().ServeHTTP)
	r.Route("/panes", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, snapshots())
		})
		r.Get("/{channel}", func(w http.ResponseWriter, r *http.Request) {
			channel := chi.URLParam(r, "channel")
			snap, ok := lo.Find(snapshots(), func(s playback.Snapshot) bool {
				return s.Channel == channel
			})
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no pane for channel " + channel})
				return
			}
			writeJSON(w, http.StatusOK, snap)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("encode response: %v", err)
	}
}

// Serve listens on addr until ctx is done.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("metrics listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
