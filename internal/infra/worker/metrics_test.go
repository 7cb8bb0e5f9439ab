package worker

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerMetrics_RecordJob(t *testing.T) {
	m := NewWorkerMetrics(prometheus.NewRegistry())

	m.RecordJob("busy", 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("busy")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.JobLastSuccessStamp))

	m.RecordJob("success", 3*time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("success")))
	assert.Greater(t, testutil.ToFloat64(m.JobLastSuccessStamp), 0.0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.JobDuration))

	var pb dto.Metric
	require.NoError(t, m.JobDuration.Write(&pb))
	assert.Equal(t, uint64(2), pb.GetHistogram().GetSampleCount())
	assert.InDelta(t, 3.0, pb.GetHistogram().GetSampleSum(), 0.001)
}

func TestNewWorkerMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewWorkerMetrics(reg)
	second := NewWorkerMetrics(reg)
	assert.Same(t, first.JobRunsTotal, second.JobRunsTotal)
}
