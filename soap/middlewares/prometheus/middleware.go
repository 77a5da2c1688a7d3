package prometheus

import (
	"context"
	"time"

	"github.com/coderi421/adkit/soap"
	"github.com/prometheus/client_golang/prometheus"
)

type MiddlewareBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
	// Registerer 默认是 prometheus.DefaultRegisterer
	Registerer prometheus.Registerer
}

func (m MiddlewareBuilder) Build() soap.Middleware {
	vector := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:      m.Name,
		Subsystem: m.Subsystem,
		Namespace: m.Namespace,
		Help:      m.Help,
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.90:  0.01,
			0.99:  0.001,
			0.999: 0.0001,
		},
	}, []string{"service", "operation", "outcome"})

	reg := m.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(vector)

	return func(next soap.Handler) soap.Handler {
		return func(ctx context.Context, inv *soap.Invocation) *soap.Result {
			startTime := time.Now()
			res := next(ctx, inv)
			err := res.Failure()
			outcome := "ok"
			if err != nil {
				outcome = "error"
				if _, ok := soap.AsFault(err); ok {
					outcome = "fault"
				}
			}
			vector.WithLabelValues(inv.Service, inv.Operation, outcome).
				Observe(float64(time.Since(startTime).Milliseconds()))
			return res
		}
	}
}
