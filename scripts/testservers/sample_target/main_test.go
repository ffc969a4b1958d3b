package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSampleTargetHeaders(t *testing.T) {
	mux := newMux(0)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/work?ms=0", nil))
	if got := rec.Header().Get("X-Response-Time"); got != "0ms" {
		t.Errorf("X-Response-Time = %q, want 0ms", got)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runtime?ms=0", nil))
	if got := rec.Header().Get("X-Runtime"); got != "0.000000" {
		t.Errorf("X-Runtime = %q, want 0.000000", got)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/flaky", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/flaky with fail rate 0 returned %d", rec.Code)
	}
}
