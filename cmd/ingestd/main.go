// Command ingestd exposes the ingest pipeline over HTTP: POST /run spawns
// the ingest CLI in backlog mode with a bounded timeout. Non-zero exits are
// reported inside a 200 envelope so the trigger layer never turns ingest
// failures into HTTP errors.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/joho/godotenv"

	"reelingest/internal/config"
	"reelingest/internal/logger"
)

const runTimeout = 55 * time.Second

type runResponse struct {
	OK      bool   `json:"ok"`
	Ran     bool   `json:"ran"`
	Stderr  string `json:"stderr,omitempty"`
	Timeout bool   `json:"timeout,omitempty"`
	Error   string `json:"error,omitempty"`
}

func main() {
	_ = godotenv.Load()

	log := logger.New()
	log.WithField("service", "ingestd").Info("starting trigger server")

	ingestBin := os.Getenv("INGEST_BIN")
	if ingestBin == "" {
		ingestBin = "ingest"
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "run")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if _, err := config.Load(); err != nil {
			reqLog.WithError(err).Warn("store configuration missing")
			writeJSON(w, http.StatusBadRequest, runResponse{Error: err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, ingestBin, "--from-strategy-videos")
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		start := time.Now()
		err := cmd.Run()
		reqLog = reqLog.WithField("duration_ms", time.Since(start).Milliseconds())

		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			reqLog.Warn("ingest run timed out")
			writeJSON(w, http.StatusOK, runResponse{OK: true, Ran: true, Timeout: true})
		case err != nil:
			reqLog.WithError(err).Warn("ingest run exited non-zero")
			writeJSON(w, http.StatusOK, runResponse{OK: true, Ran: true, Stderr: truncate(stderr.String(), 500)})
		default:
			reqLog.Info("ingest run finished")
			writeJSON(w, http.StatusOK, runResponse{OK: true, Ran: true})
		}
	})

	addr := ":" + envOr("PORT", "8080")
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server terminated")
	}
}

func writeJSON(w http.ResponseWriter, status int, body runResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
