package execution

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/kchain/kunit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	m1, err := NewMetrics(reg)
	assert.NoError(t, err)
	m2, err := NewMetrics(reg)
	assert.NoError(t, err)
	assert.True(t, m1.events == m2.events)
}

func TestPipelineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	assert.NoError(t, err)

	units := kunit.NewRegistry()
	units.MustRegister("Src", func() kunit.Unit {
		return &mockSource{
			mockUnit: mockUnit{processFn: func(ctx context.Context, evt *kunit.Event, out kunit.Output) error {
				return out.PushBack([]byte("data"), rawTPC, 0)
			}},
			estimate: kunit.SizeEstimate{ConstBase: 16},
		}
	}, "")

	p := newTestPipeline(t, units, "A", chainDef{name: "A", kind: "Src"})
	p.metrics = metrics
	assert.NoError(t, p.Run(context.Background(), 2))

	// Start of run plus two data events.
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.events.WithLabelValues("A")))
	assert.Equal(t, 12.0, testutil.ToFloat64(metrics.outputSize.WithLabelValues("A")))
	assert.Equal(t, float64(StateStarted), testutil.ToFloat64(metrics.state))
}
