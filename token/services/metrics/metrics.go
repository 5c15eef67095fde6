/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics

// CounterOpts describes a counter. LabelNames lists the labels that With may set.
type CounterOpts struct {
	Namespace  string
	Subsystem  string
	Name       string
	Help       string
	LabelNames []string
}

type GaugeOpts struct {
	Namespace  string
	Subsystem  string
	Name       string
	Help       string
	LabelNames []string
}

type HistogramOpts struct {
	Namespace  string
	Subsystem  string
	Name       string
	Help       string
	LabelNames []string
	// Buckets defaults to the prometheus default buckets
	Buckets []float64
}

// Counter is a monotonically increasing metric.
// With takes label name and value pairs, e.g. With("outcome", "ok").
type Counter interface {
	With(labelValues ...string) Counter
	Add(delta float64)
}

type Gauge interface {
	With(labelValues ...string) Gauge
	Add(delta float64)
	Set(value float64)
}

type Histogram interface {
	With(labelValues ...string) Histogram
	Observe(value float64)
}

// Provider creates metrics
type Provider interface {
	NewCounter(CounterOpts) Counter
	NewGauge(GaugeOpts) Gauge
	NewHistogram(HistogramOpts) Histogram
}
