package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var seen string
	h := withRequestID(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(requestIDHeader)
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/", nil))

		id := w.Header().Get(requestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("keeps the incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
		assert.Equal(t, "abc-123", seen)
	})

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc-123", entries[1].ContextMap()["request_id"])
	assert.Equal(t, int64(http.StatusTeapot), entries[1].ContextMap()["status"])
}

func TestWithRecovery(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode int
		wantLogs int
	}{
		{
			name:     "no panic passes through",
			handler:  func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) },
			wantCode: http.StatusOK,
		},
		{
			name:     "panic returns 500",
			handler:  func(http.ResponseWriter, *http.Request) { panic("boom") },
			wantCode: http.StatusInternalServerError,
			wantLogs: 1,
		},
		{
			name:     "panic with integer value",
			handler:  func(http.ResponseWriter, *http.Request) { panic(42) },
			wantCode: http.StatusInternalServerError,
			wantLogs: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.ErrorLevel)
			w := httptest.NewRecorder()

			assert.NotPanics(t, func() {
				withRecovery(zap.New(core), tt.handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			})
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLogs, logs.Len())
		})
	}
}
