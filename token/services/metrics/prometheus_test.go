/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperledger-labs/token-custody/token/services/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opsOpts = metrics.CounterOpts{
	Namespace:  "tokenbank",
	Name:       "operations",
	Help:       "The number of operations",
	LabelNames: []string{"operation", "outcome"},
}

func TestCounter(t *testing.T) {
	registry := prometheus.NewRegistry()
	p := metrics.NewPrometheusProvider(registry)

	c := p.NewCounter(opsOpts)
	c.With("operation", "deposit", "outcome", "ok").Add(1)
	c.With("operation", "deposit", "outcome", "ok").Add(2)
	c.With("operation", "withdraw").Add(1)

	expected := `
# HELP tokenbank_operations The number of operations
# TYPE tokenbank_operations counter
tokenbank_operations{operation="deposit",outcome="ok"} 3
tokenbank_operations{operation="withdraw",outcome=""} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "tokenbank_operations"))
}

func TestDuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	p := metrics.NewPrometheusProvider(registry)

	assert.NotPanics(t, func() {
		p.NewCounter(opsOpts).With("operation", "deposit", "outcome", "ok").Add(1)
		p.NewCounter(opsOpts).With("operation", "deposit", "outcome", "ok").Add(1)
	})
	count, err := testutil.GatherAndCount(registry, "tokenbank_operations")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGaugeAndHistogram(t *testing.T) {
	registry := prometheus.NewRegistry()
	p := metrics.NewPrometheusProvider(registry)

	g := p.NewGauge(metrics.GaugeOpts{Namespace: "tokenbank", Name: "whitelisted_tokens", Help: "size"})
	g.With().Set(3)
	g.With().Add(1)
	h := p.NewHistogram(metrics.HistogramOpts{
		Namespace:  "tokenbank",
		Name:       "operation_duration_seconds",
		Help:       "duration",
		LabelNames: []string{"operation"},
	})
	h.With("operation", "deposit").Observe(0.5)

	expected := `
# HELP tokenbank_whitelisted_tokens size
# TYPE tokenbank_whitelisted_tokens gauge
tokenbank_whitelisted_tokens 4
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "tokenbank_whitelisted_tokens"))
	count, err := testutil.GatherAndCount(registry, "tokenbank_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "tokenbank_whitelisted_tokens 4")
}

func TestDisabled(t *testing.T) {
	p := metrics.NewDisabledProvider()
	assert.NotPanics(t, func() {
		p.NewCounter(opsOpts).With("operation", "deposit").Add(1)
		p.NewGauge(metrics.GaugeOpts{}).With().Set(1)
		p.NewHistogram(metrics.HistogramOpts{}).With().Observe(1)
	})
}
