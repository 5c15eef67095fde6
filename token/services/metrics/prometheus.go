/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"net/http"

	"github.com/hyperledger-labs/token-custody/token/services/logging"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var logger = logging.MustGetLogger("metrics")

// PrometheusProvider registers its metrics with a prometheus registry
type PrometheusProvider struct {
	registry *prometheus.Registry
}

func NewPrometheusProvider(registry *prometheus.Registry) *PrometheusProvider {
	return &PrometheusProvider{registry: registry}
}

// Handler exposes the registry in the prometheus text format
func (p *PrometheusProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *PrometheusProvider) NewCounter(o CounterOpts) Counter {
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: o.Namespace,
		Subsystem: o.Subsystem,
		Name:      o.Name,
		Help:      o.Help,
	}, o.LabelNames)
	return &counter{cv: register(p.registry, cv), labels: newLabels(o.LabelNames)}
}

func (p *PrometheusProvider) NewGauge(o GaugeOpts) Gauge {
	gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: o.Namespace,
		Subsystem: o.Subsystem,
		Name:      o.Name,
		Help:      o.Help,
	}, o.LabelNames)
	return &gauge{gv: register(p.registry, gv), labels: newLabels(o.LabelNames)}
}

func (p *PrometheusProvider) NewHistogram(o HistogramOpts) Histogram {
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: o.Namespace,
		Subsystem: o.Subsystem,
		Name:      o.Name,
		Help:      o.Help,
		Buckets:   o.Buckets,
	}, o.LabelNames)
	return &histogram{hv: register(p.registry, hv), labels: newLabels(o.LabelNames)}
}

// register returns the collector already registered under the same name, if any
func register[C prometheus.Collector](registry *prometheus.Registry, c C) C {
	err := registry.Register(c)
	if err == nil {
		return c
	}
	are := prometheus.AlreadyRegisteredError{}
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			logger.Debugf("reusing already registered collector: %v", err)
			return existing
		}
	}
	panic(err)
}

type counter struct {
	cv     *prometheus.CounterVec
	labels labels
}

func (c *counter) With(labelValues ...string) Counter {
	return &counter{cv: c.cv, labels: c.labels.with(labelValues...)}
}

func (c *counter) Add(delta float64) {
	c.cv.With(prometheus.Labels(c.labels)).Add(delta)
}

type gauge struct {
	gv     *prometheus.GaugeVec
	labels labels
}

func (g *gauge) With(labelValues ...string) Gauge {
	return &gauge{gv: g.gv, labels: g.labels.with(labelValues...)}
}

func (g *gauge) Add(delta float64) {
	g.gv.With(prometheus.Labels(g.labels)).Add(delta)
}

func (g *gauge) Set(value float64) {
	g.gv.With(prometheus.Labels(g.labels)).Set(value)
}

type histogram struct {
	hv     *prometheus.HistogramVec
	labels labels
}

func (h *histogram) With(labelValues ...string) Histogram {
	return &histogram{hv: h.hv, labels: h.labels.with(labelValues...)}
}

func (h *histogram) Observe(value float64) {
	h.hv.With(prometheus.Labels(h.labels)).Observe(value)
}

// labels maps every declared label name to its value, unset labels are empty
type labels map[string]string

func newLabels(names []string) labels {
	l := make(labels, len(names))
	for _, name := range names {
		l[name] = ""
	}
	return l
}

func (l labels) with(labelValues ...string) labels {
	if len(labelValues)%2 != 0 {
		labelValues = append(labelValues, "unknown")
	}
	res := make(labels, len(l))
	for k, v := range l {
		res[k] = v
	}
	for i := 0; i < len(labelValues); i += 2 {
		res[labelValues[i]] = labelValues[i+1]
	}
	return res
}
