package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCatalogReload(t *testing.T) {
	before := testutil.ToFloat64(catalogReloadsTotal.WithLabelValues("failure"))
	RecordCatalogReload(false)
	after := testutil.ToFloat64(catalogReloadsTotal.WithLabelValues("failure"))
	if after != before+1 {
		t.Errorf("failure reloads = %v, want %v", after, before+1)
	}
}

func TestRecordChallengesSwept_IgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(challengesSweptTotal)
	RecordChallengesSwept(0)
	RecordChallengesSwept(-3)
	if got := testutil.ToFloat64(challengesSweptTotal); got != before {
		t.Errorf("swept = %v, want unchanged %v", got, before)
	}
	RecordChallengesSwept(2)
	if got := testutil.ToFloat64(challengesSweptTotal); got != before+2 {
		t.Errorf("swept = %v, want %v", got, before+2)
	}
}

func TestObserveHTTPRequest_UnmatchedRoute(t *testing.T) {
	ObserveHTTPRequest("GET", "", 404, 5*time.Millisecond)
	if n := testutil.CollectAndCount(httpRequestDuration); n == 0 {
		t.Error("expected at least one histogram series")
	}
}
