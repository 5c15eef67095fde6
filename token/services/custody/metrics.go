/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package custody

import (
	"time"

	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/metrics"
	"github.com/pkg/errors"
)

const (
	OperationLabel = "operation"
	OutcomeLabel   = "outcome"
)

var (
	operationsOpts = metrics.CounterOpts{
		Namespace:  "tokenbank",
		Name:       "operations",
		Help:       "The number of custody operations by outcome",
		LabelNames: []string{OperationLabel, OutcomeLabel},
	}
	operationDurationOpts = metrics.HistogramOpts{
		Namespace:  "tokenbank",
		Name:       "operation_duration_seconds",
		Help:       "Duration of a custody operation",
		LabelNames: []string{OperationLabel},
	}
	whitelistedTokensOpts = metrics.GaugeOpts{
		Namespace: "tokenbank",
		Name:      "whitelisted_tokens",
		Help:      "The number of whitelisted token types",
	}
)

type Metrics struct {
	Operations        metrics.Counter
	OperationDuration metrics.Histogram
	WhitelistedTokens metrics.Gauge
}

func NewMetrics(p metrics.Provider) *Metrics {
	return &Metrics{
		Operations:        p.NewCounter(operationsOpts),
		OperationDuration: p.NewHistogram(operationDurationOpts),
		WhitelistedTokens: p.NewGauge(whitelistedTokensOpts),
	}
}

func (m *Metrics) Observe(operation string, start time.Time, err error) {
	m.Operations.With(OperationLabel, operation, OutcomeLabel, Outcome(err)).Add(1)
	m.OperationDuration.With(OperationLabel, operation).Observe(time.Since(start).Seconds())
}

var outcomes = []struct {
	err  error
	name string
}{
	// transfer failures wrap the network cause, match them first
	{driver.ErrTransferFailed, "transfer_failed"},
	{driver.ErrInvalidToken, "invalid_token"},
	{driver.ErrInvalidAmount, "invalid_amount"},
	{driver.ErrTokenMismatch, "token_mismatch"},
	{driver.ErrInsufficientWalletBalance, "insufficient_wallet_balance"},
	{driver.ErrInsufficientUserBalance, "insufficient_user_balance"},
	{driver.ErrInsufficientBalance, "insufficient_balance"},
	{driver.ErrLedgerOverflow, "ledger_overflow"},
	{driver.ErrAlreadyWhitelisted, "already_whitelisted"},
	{driver.ErrUnauthorized, "unauthorized"},
	{driver.ErrAccountNotFound, "account_not_found"},
	{driver.ErrAccountExists, "account_exists"},
	{driver.ErrBankNotInitialized, "bank_not_initialized"},
	{driver.ErrBankAlreadyInitialized, "bank_already_initialized"},
}

// Outcome names the kind of err, "ok" for nil
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.name
		}
	}
	return "error"
}
