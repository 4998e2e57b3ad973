package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/mmynk/tripledger/internal/auth"
)

type ping struct{}

func callInterceptor(t *testing.T, interceptor connect.UnaryInterceptorFunc, header string) (*auth.Claims, error) {
	t.Helper()
	var seen *auth.Claims
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen = GetClaims(ctx)
		return connect.NewResponse(&ping{}), nil
	}
	req := connect.NewRequest(&ping{})
	if header != "" {
		req.Header().Set("Authorization", header)
	}
	_, err := interceptor(next)(context.Background(), req)
	return seen, err
}

func TestAuthInterceptors(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Hour)
	token, err := m.Generate("planner", []string{"trip-1"})
	require.NoError(t, err)

	tests := []struct {
		name        string
		interceptor connect.UnaryInterceptorFunc
		header      string
		wantCode    connect.Code
		wantSubject string
	}{
		{"required with token", RequireAuth(m), "Bearer " + token, 0, "planner"},
		{"required without token", RequireAuth(m), "", connect.CodeUnauthenticated, ""},
		{"required with bad scheme", RequireAuth(m), "Token " + token, connect.CodeUnauthenticated, ""},
		{"optional without token", OptionalAuth(m), "", 0, ""},
		{"optional with token", OptionalAuth(m), "Bearer " + token, 0, "planner"},
		{"optional with invalid token", OptionalAuth(m), "Bearer junk", connect.CodeUnauthenticated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := callInterceptor(t, tt.interceptor, tt.header)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			if tt.wantSubject == "" {
				assert.Nil(t, claims)
			} else {
				require.NotNil(t, claims)
				assert.Equal(t, tt.wantSubject, claims.Subject)
			}
		})
	}
}

func TestHTTPAuth(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Hour)
	token, err := m.Generate("planner", nil)
	require.NoError(t, err)

	handler := HTTPAuth(m, true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetSubject(r.Context())))
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "planner", rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trips", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthenticated", body["code"])
	assert.Equal(t, auth.ErrMissingToken.Error(), body["error"])
}

func TestRateLimit(t *testing.T) {
	rate := limiter.Rate{Period: time.Minute, Limit: 2}
	handler := RateLimit(limiter.New(memory.NewStore(), rate))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var codes []int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// Another client has its own budget.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type fakeRecorder struct {
	method string
	status int
}

func (f *fakeRecorder) RecordHTTPRequest(method string, status int, _ time.Duration) {
	f.method, f.status = method, status
}

func TestLoggingRecordsStatus(t *testing.T) {
	rec := &fakeRecorder{}
	handler := Logging(rec)(CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, http.StatusTeapot, rec.status)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	want := connect.NewError(connect.CodeNotFound, errors.New("gone"))
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, want
	}
	_, err := LoggingInterceptor()(next)(context.Background(), connect.NewRequest(&ping{}))
	assert.Same(t, want, err)
}

type tripPing struct{ TripID string }

func (p *tripPing) GetTripID() string { return p.TripID }

func TestLoggingInterceptorTagsTrip(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("trip not found"))
	}
	_, err := LoggingInterceptor()(next)(context.Background(), connect.NewRequest(&tripPing{TripID: "trip-9"}))
	require.Error(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "trip-9", entry["trip_id"])
	assert.Equal(t, "not_found", entry["code"])
	assert.NotContains(t, entry, "subject")
}
