package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"galaxy-datagen/internal/shared/loggers"
	"galaxy-datagen/internal/shared/svcerrors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMwRequestID_GeneratesIDWhenNotProvided(t *testing.T) {
	t.Parallel()

	var seenID string
	handler := mwRequestID(loggers.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = r.Header.Get(headerRequestID)
		assert.NotNil(t, loggers.Ctx(r.Context()), "logger should be in context")
		w.WriteHeader(http.StatusAccepted)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/generate", nil))

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Len(t, seenID, 26, "request ID should be a ULID")
	assert.Equal(t, seenID, rr.Header().Get(headerRequestID), "request ID should be echoed")
}

func TestMwRequestID_UsesProvidedID(t *testing.T) {
	t.Parallel()

	providedID := "custom-request-id-12345"
	handler := mwRequestID(loggers.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, providedID, r.Header.Get(headerRequestID))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/generate", nil)
	req.Header.Set(headerRequestID, providedID)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, providedID, rr.Header().Get(headerRequestID))
}

func TestMwRecoverer_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
	}{
		{name: "string panic", value: "test panic"},
		{name: "error panic", value: assert.AnError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := mwRecoverer(mwRequestID(loggers.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			})))

			rr := httptest.NewRecorder()
			assert.NotPanics(t, func() {
				handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/generate", nil))
			})

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var errorResponse ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errorResponse))
			assert.NotEmpty(t, errorResponse.RequestID)
			assert.Equal(t, "internal", errorResponse.ErrorCategory)
			assert.Equal(t, "SYS_9000", errorResponse.ErrorCode)
			assert.Equal(t, "internal server error", errorResponse.ErrorDescription)
		})
	}
}

func TestMwRecoverer_PassesThroughWhenNoPanic(t *testing.T) {
	t.Parallel()

	handler := mwRecoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/generate", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", rr.Body.String())
}

func TestMwRequestCompletionLog_WritesOneLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := loggers.NewWithWriter("info", &buf)
	require.NoError(t, err)

	handler := mwRequestID(logger)(mwAppResponseWriter(mwRequestCompletionLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, r, svcerrors.NewInvalidArgumentError("DSP_1000", "invalid", nil))
	}))))

	req := httptest.NewRequest(http.MethodGet, "/generate?num_particles=1", nil)
	req.Header.Set("User-Agent", "curl/8.4.0")
	req.Header.Set(headerRequestID, "req-log")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request completed", line["message"])
	assert.Equal(t, "req-log", line[loggers.FieldRequestID])
	assert.Equal(t, "GET", line[loggers.FieldHttpMethod])
	assert.Equal(t, "/generate", line[loggers.FieldHttpPath])
	assert.Equal(t, float64(http.StatusBadRequest), line[loggers.FieldHttpStatus])
	assert.Equal(t, "DSP_1000", line[loggers.FieldErrorCode])
	assert.Equal(t, "curl", line[loggers.FieldUserAgent])
}

func TestUserAgentName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "chrome",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: "Chrome",
		},
		{
			name: "firefox",
			ua:   "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: "Firefox",
		},
		{name: "curl", ua: "curl/7.88.1", want: "curl"},
		{name: "empty", ua: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, userAgentName(tt.ua))
		})
	}
}

func TestSetupMiddleware_Integration(t *testing.T) {
	t.Parallel()

	router := chi.NewRouter()
	setupMiddleware(router, loggers.Nop())

	router.Get("/test-id", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get(headerRequestID), "request ID should be set")
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/test-panic", func(w http.ResponseWriter, r *http.Request) {
		panic("integration test panic")
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test-id", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test-panic", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var errorResponse ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errorResponse))
	assert.NotEmpty(t, errorResponse.RequestID)
	assert.Equal(t, "SYS_9000", errorResponse.ErrorCode)
}
