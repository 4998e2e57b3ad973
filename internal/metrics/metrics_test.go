package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripledger/internal/apperrors"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{apperrors.Validationf("bad"), "validation"},
		{fmt.Errorf("wrapped: %w", apperrors.NotFoundf("gone")), "not_found"},
		{apperrors.Conflictf("busy"), "conflict"},
		{apperrors.Invariantf("broken"), "invariant"},
		{context.Canceled, "canceled"},
		{errors.New("disk on fire"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestPrometheusRecorder(t *testing.T) {
	pr, err := NewPrometheusRecorder("test")
	require.NoError(t, err)

	pr.RecordOperation("record_expense", nil, time.Millisecond)
	pr.RecordOperation("record_expense", apperrors.Validationf("bad"), time.Millisecond)
	pr.RecordCacheLookup(true)
	pr.RecordCacheLookup(false)
	pr.RecordCacheLookup(false)
	pr.RecordInvariantViolation("get_balances")
	pr.RecordPublishFailure("expense.recorded")

	assert.Equal(t, 1.0, testutil.ToFloat64(pr.operations.WithLabelValues("record_expense", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.operations.WithLabelValues("record_expense", "validation")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pr.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.invariantFailures.WithLabelValues("get_balances")))

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_event_publish_failures_total"))
}
