/*
- @Author: aztec
- @Date: 2024-02-14 11:20:40
- @Description: 运行指标
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package runner

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Units        *prometheus.CounterVec
	UnitDuration *prometheus.HistogramVec
	Conditions   *prometheus.CounterVec
	SinkWrites   *prometheus.CounterVec
	ActiveUnits  prometheus.Gauge
}

// reg为nil时不注册
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Units: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factorbench_units_total",
				Help: "Units of work by result",
			},
			[]string{"result"},
		),
		UnitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "factorbench_unit_duration_seconds",
				Help:    "Duration of one unit of work",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
			},
			[]string{"factor"},
		),
		Conditions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factorbench_conditions_total",
				Help: "Recoverable conditions reported by units",
			},
			[]string{"condition"},
		),
		SinkWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factorbench_sink_writes_total",
				Help: "Result writes by sink and result",
			},
			[]string{"sink", "result"},
		),
		ActiveUnits: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "factorbench_active_units",
				Help: "Units currently running",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Units, m.UnitDuration, m.Conditions, m.SinkWrites, m.ActiveUnits)
	}
	return m
}
