package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/initr/internal/initr"
)

// status exposes the coordinator of the current run to the status server.
type status struct {
	mu sync.RWMutex
	c  *initr.Coordinator
}

func (s *status) set(c *initr.Coordinator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c = c
}

func (s *status) get() *initr.Coordinator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c
}

type outcomeView struct {
	Handle string `json:"handle"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type doneView struct {
	RunID     string        `json:"run_id"`
	Completed []string      `json:"completed"`
	Outcomes  []outcomeView `json:"outcomes"`
}

// healthHandler reports that the process is up.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// doneHandler lists the completed dependencies and every outcome so far.
func (a *App) doneHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Done endpoint hit.", "remote_addr", r.RemoteAddr)
	view := doneView{RunID: a.runID, Completed: []string{}, Outcomes: []outcomeView{}}
	if c := a.status.get(); c != nil {
		for _, o := range c.Outcomes() {
			ov := outcomeView{Handle: o.Handle, Status: string(o.Status)}
			if o.Err != nil {
				ov.Error = o.Err.Error()
			}
			if !o.Status.Skipped() {
				view.Completed = append(view.Completed, o.Handle)
			}
			view.Outcomes = append(view.Outcomes, ov)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		a.logger.Error("Failed to encode done response.", "error", err)
	}
}

func (a *App) statusMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/done", a.doneHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(a.metricsReg, promhttp.HandlerOpts{}))
	return mux
}

// startStatusServer runs the status HTTP server in the background.
func (a *App) startStatusServer(port int) {
	addr := fmt.Sprintf(":%d", port)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.statusMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Status server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeStatusServer() {
	if a.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(a.ctx), 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down status server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Status server shutdown failed", "error", err)
		return
	}
	a.logger.Debug("Status server shut down gracefully.")
}
