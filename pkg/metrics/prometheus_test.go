package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordFiling("stored")
	r.RecordFiling("stored")
	r.RecordRejection("quote")
	r.RecordResult("機械")
	r.RecordError("list_filings")
	r.RecordLatency("quote", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.filings.WithLabelValues("stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rejections.WithLabelValues("quote")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.results.WithLabelValues("機械")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTot.WithLabelValues("list_filings")))

	n, err := testutil.GatherAndCount(reg, "finscreen_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
