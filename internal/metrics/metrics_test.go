package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(AnswersChecked.WithLabelValues("correct"))
	AnswersChecked.WithLabelValues("correct").Inc()
	if got := testutil.ToFloat64(AnswersChecked.WithLabelValues("correct")); got != before+1 {
		t.Errorf("answers checked = %v, want %v", got, before+1)
	}

	ActiveSessions.Set(0)
	ActiveSessions.Inc()
	ActiveSessions.Inc()
	ActiveSessions.Dec()
	if got := testutil.ToFloat64(ActiveSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}
}
