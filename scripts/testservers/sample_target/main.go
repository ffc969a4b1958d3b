// Command sample_target is a local HTTP server for trying volley by hand. Its
// endpoints report server compute time the ways volley understands.
//
//	go run ./scripts/testservers/sample_target --port 8080
//	volley -c 10 -n 100 localhost:8080/work
package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	port := pflag.Int("port", 8080, "Listening port")
	failRate := pflag.Float64("fail-rate", 0.1, "Fraction of /flaky requests answered with 500")
	pflag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	addr := fmt.Sprintf(":%d", *port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(*failRate),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("sample target listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newMux(failRate float64) *http.ServeMux {
	mux := http.NewServeMux()
	// /work?ms=N sleeps N ms (default random 0-50) and reports it in X-Response-Time.
	mux.HandleFunc("/work", func(w http.ResponseWriter, r *http.Request) {
		d := delayFrom(r)
		time.Sleep(d)
		w.Header().Set("X-Response-Time", strconv.FormatInt(d.Milliseconds(), 10)+"ms")
		respondJSON(w, http.StatusOK, map[string]any{"slept_ms": d.Milliseconds()})
	})
	// /runtime reports the same in seconds via X-Runtime.
	mux.HandleFunc("/runtime", func(w http.ResponseWriter, r *http.Request) {
		d := delayFrom(r)
		time.Sleep(d)
		w.Header().Set("X-Runtime", strconv.FormatFloat(d.Seconds(), 'f', 6, 64))
		respondJSON(w, http.StatusOK, map[string]any{"slept_ms": d.Milliseconds()})
	})
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		if rand.Float64() < failRate {
			respondJSON(w, http.StatusInternalServerError, map[string]any{"ok": false})
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"ok":         true,
			"path":       r.URL.Path,
			"request_id": r.Header.Get("X-Request-Id"),
		})
	})
	return mux
}

func delayFrom(r *http.Request) time.Duration {
	if ms, err := strconv.Atoi(r.URL.Query().Get("ms")); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return time.Duration(rand.IntN(51)) * time.Millisecond
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
