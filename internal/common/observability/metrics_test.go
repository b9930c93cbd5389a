package observability

import (
	"context"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_ExportsPipelineRuns(t *testing.T) {
	reg := promclient.NewRegistry()
	o := NewWithRegisterer("negotiation-gateway-test", reg)
	defer o.Shutdown()

	ctx := context.Background()
	o.RecordPipelineRun(ctx, "command")
	o.RecordPipelineRun(ctx, "command")
	o.RecordPipelineDuration(ctx, 12*time.Millisecond, "ok")

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() == "pipeline_runs_total" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, 2.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "pipeline_runs_total not exported")
}

func TestObservability_FamilyNamesUseUnderscores(t *testing.T) {
	reg := promclient.NewRegistry()
	o := NewWithRegisterer("negotiation-gateway-test", reg)
	defer o.Shutdown()

	ctx := context.Background()
	o.RecordPipelineRun(ctx, "command")
	o.RecordPipelineDuration(ctx, 5*time.Millisecond, "ok")
	o.RecordBroadcast(ctx, "chat")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		assert.NotContains(t, mf.GetName(), ".")
		names[mf.GetName()] = true
	}
	assert.True(t, names["pipeline_runs_total"])
	assert.True(t, names["relay_broadcasts_total"])
}

func TestObservability_ZeroValueIsNoop(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		o.RecordPipelineRun(context.Background(), "no_intent")
		o.RecordBroadcast(context.Background(), "chat")
		o.Shutdown()
	})
}
