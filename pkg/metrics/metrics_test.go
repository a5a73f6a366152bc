package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New("stockroom_test")

	m.IncMutation("issue", "blocked")
	m.IncMutation("issue", "blocked")
	m.IncAlert("negative_stock", "high")
	m.IncNotification("skipped")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StockMutations.WithLabelValues("issue", "blocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsCreated.WithLabelValues("negative_stock", "high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("skipped")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncMutation("receive", "ok")
		m.IncAlert("low_stock", "medium")
		m.IncNotification("sent")
	})
}
