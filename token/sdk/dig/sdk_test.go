/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdk

import (
	"context"
	"fmt"
	"testing"

	tdriver "github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/config"
	"github.com/hyperledger-labs/token-custody/token/services/custody"
	"github.com/hyperledger-labs/token-custody/token/services/network/inmemory"
	"github.com/hyperledger-labs/token-custody/token/services/rest"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	T1 = token.Identity{1}
	T2 = token.Identity{2}
)

const bankConfig = `
bank:
  authority: bank
  tokens:
    - 4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM
custody:
  accounts:
    - token: 4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM
      address: bank-btc
    - token: 8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh
      address: bank-sol
network:
  accounts:
    - address: bank-btc
      token: 4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM
      owner: bank
    - address: alice-btc
      token: 4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM
      owner: alice
      amount: 1000
db:
  driver: memory
  dataSource: %s
rest:
  address: 127.0.0.1:0
metrics:
  address: 127.0.0.1:0
`

func newSDK(t *testing.T, extra string) *SDK {
	cp, err := config.NewProvider("")
	require.NoError(t, err)
	require.NoError(t, cp.MergeConfig([]byte(fmt.Sprintf(bankConfig, t.Name()))))
	if len(extra) != 0 {
		require.NoError(t, cp.MergeConfig([]byte(extra)))
	}
	p := NewSDK(cp)
	require.NoError(t, p.Install())
	return p
}

func TestWiring(t *testing.T) {
	p := newSDK(t, "")
	ctx := context.Background()
	require.NoError(t, p.Start(ctx))
	t.Cleanup(func() { assert.NoError(t, p.Stop()) })

	require.NoError(t, p.Container().Invoke(func(s *custody.Service, n *inmemory.Network, server *rest.Server) {
		require.NotNil(t, server)

		tokens, err := s.Tokens()
		require.NoError(t, err)
		assert.Equal(t, []token.Identity{T1}, tokens)

		// custody accounts missing from the network are created for the bank
		sol, err := n.TokenAccount(ctx, "bank-sol")
		require.NoError(t, err)
		assert.Equal(t, tdriver.Identity("bank"), sol.Owner)
		assert.Equal(t, T2, sol.Token)

		require.NoError(t, s.InitializeAccount(ctx, tdriver.Authorization{Caller: "alice"}))
		receipt, err := s.Deposit(ctx, tdriver.Authorization{Caller: "alice"}, &custody.Request{Wallet: "alice-btc", Token: T1, Amount: 10})
		require.NoError(t, err)
		assert.Equal(t, "bank-btc", receipt.Custody)
		assert.Equal(t, token.Quantity(10), receipt.Balance)
	}))
}

func TestRestartExtendsWhitelist(t *testing.T) {
	first := newSDK(t, "")
	ctx := context.Background()
	require.NoError(t, first.Start(ctx))
	t.Cleanup(func() { assert.NoError(t, first.Stop()) })

	second := newSDK(t, `
bank:
  tokens:
    - 4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM
    - 8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh
`)
	require.NoError(t, second.Start(ctx))
	require.NoError(t, second.Container().Invoke(func(s *custody.Service) {
		tokens, err := s.Tokens()
		require.NoError(t, err)
		assert.Equal(t, []token.Identity{T1, T2}, tokens)
	}))
}

func TestUnknownDriver(t *testing.T) {
	p := newSDK(t, "db:\n  driver: oracle\n")
	require.Error(t, p.Start(context.Background()))
}

func TestServeStopsWithContext(t *testing.T) {
	p := newSDK(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))
	t.Cleanup(func() { assert.NoError(t, p.Stop()) })

	cancel()
	require.NoError(t, p.Serve(ctx))
}
