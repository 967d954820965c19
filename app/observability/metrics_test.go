package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ctx := context.Background()

	m.RecordAPIRequest(ctx, "profile")
	m.RecordAPIRequest(ctx, "profile")
	m.RecordAPIError(ctx, "topplays", "panic")
	m.RecordAPIRequestDuration(ctx, "profile", 20*time.Millisecond)
	m.RecordStarRating("hit")
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.SetLinkedAccounts(7)

	if got := testutil.ToFloat64(m.operations.WithLabelValues("profile")); got != 2 {
		t.Errorf("operations_total{profile} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.operationErrors.WithLabelValues("topplays", "panic")); got != 1 {
		t.Errorf("operation_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.starRatings.WithLabelValues("hit")); got != 1 {
		t.Errorf("star_rating_lookups_total{hit} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.activeSessions); got != 1 {
		t.Errorf("pagination_sessions_active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.linkedAccounts); got != 7 {
		t.Errorf("linked_accounts = %v, want 7", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordAPIRequest(ctx, "x")
	m.RecordAPIError(ctx, "x", "y")
	m.RecordAPIRequestDuration(ctx, "x", time.Second)
	m.RecordOsuRequest("users", "ok", time.Second)
	m.RecordStarRating("miss")
	m.SessionOpened()
	m.SessionClosed()
	m.SetLinkedAccounts(1)
	m.RecordAccountEvent("t")
}
