/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics

// NewDisabledProvider returns a provider whose metrics discard every observation
func NewDisabledProvider() Provider {
	return &disabledProvider{}
}

type disabledProvider struct{}

func (p *disabledProvider) NewCounter(CounterOpts) Counter       { return &disabledCounter{} }
func (p *disabledProvider) NewGauge(GaugeOpts) Gauge             { return &disabledGauge{} }
func (p *disabledProvider) NewHistogram(HistogramOpts) Histogram { return &disabledHistogram{} }

type disabledCounter struct{}

func (c *disabledCounter) With(...string) Counter { return c }
func (c *disabledCounter) Add(float64)            {}

type disabledGauge struct{}

func (g *disabledGauge) With(...string) Gauge { return g }
func (g *disabledGauge) Add(float64)          {}
func (g *disabledGauge) Set(float64)          {}

type disabledHistogram struct{}

func (h *disabledHistogram) With(...string) Histogram { return h }
func (h *disabledHistogram) Observe(float64)          {}
