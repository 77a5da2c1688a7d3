package prometheus

import (
	"context"
	"errors"
	"testing"

	"github.com/coderi421/adkit/soap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	reg := prometheus.NewRegistry()
	mdl := MiddlewareBuilder{
		Namespace:  "adkit",
		Subsystem:  "soap",
		Name:       "call_duration_ms",
		Help:       "remote call latency",
		Registerer: reg,
	}.Build()

	errs := []error{nil, errors.New("dial"), &soap.Fault{Code: "soap:Server"}, nil}
	for _, err := range errs {
		h := mdl(func(ctx context.Context, inv *soap.Invocation) *soap.Result {
			return &soap.Result{Err: err}
		})
		h(context.Background(), &soap.Invocation{Service: "OrderService", Operation: "getOrdersByStatement"})
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "adkit_soap_call_duration_ms", families[0].GetName())

	counts := map[string]uint64{}
	for _, m := range families[0].GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "outcome" {
				counts[l.GetValue()] = m.GetSummary().GetSampleCount()
			}
		}
	}
	assert.Equal(t, map[string]uint64{"ok": 2, "error": 1, "fault": 1}, counts)
}
