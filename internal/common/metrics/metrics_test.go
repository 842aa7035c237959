package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSink(t *testing.T) {
	before := testutil.ToFloat64(SinkDeliveries.WithLabelValues("test-sink", "delivered"))
	beforeFailed := testutil.ToFloat64(SinkDeliveries.WithLabelValues("test-sink", "failed"))

	ObserveSink("test-sink", 3, 0)
	ObserveSink("test-sink", 1, 2)

	assert.Equal(t, before+4, testutil.ToFloat64(SinkDeliveries.WithLabelValues("test-sink", "delivered")))
	assert.Equal(t, beforeFailed+2, testutil.ToFloat64(SinkDeliveries.WithLabelValues("test-sink", "failed")))
}
