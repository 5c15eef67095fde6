/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"testing"
	"time"

	tdriver "github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	T1 = token.Identity{1}
	T2 = token.Identity{2}
)

func TestDefaults(t *testing.T) {
	cp, err := NewProvider("")
	require.NoError(t, err)
	c, err := Load(cp)
	require.NoError(t, err)

	assert.Equal(t, driver.Memory, c.DB.Driver)
	assert.Equal(t, "tokenbank", c.DB.DataSource)
	assert.Equal(t, "tb", c.DB.TablePrefix)
	assert.Equal(t, 10, c.DB.MaxOpenConns)
	assert.Equal(t, time.Minute, c.DB.MaxIdleTime)
	assert.True(t, c.Bank.Authority.IsNone())
	assert.Empty(t, c.Bank.Tokens)
	assert.Empty(t, c.Custody.Accounts)
	assert.False(t, c.Custody.Deposit.CheckWallet)
	assert.Equal(t, "127.0.0.1:8080", c.REST.Address)
	assert.True(t, c.Metrics.Enabled)
	assert.Equal(t, "info", c.Logging.Level)
	assert.Equal(t, int64(10000), c.Cache.MaxCost)
}

func TestConfigurationFile(t *testing.T) {
	cp, err := NewProvider("./testdata/tokenbank.yaml")
	require.NoError(t, err)
	c, err := Load(cp)
	require.NoError(t, err)

	assert.Equal(t, tdriver.Identity("bank"), c.Bank.Authority)
	assert.Equal(t, []token.Identity{T1, T2}, c.Bank.Tokens)
	assert.Equal(t, map[token.Identity]string{T1: "bank-btc", T2: "bank-sol"}, c.CustodyAccounts())
	assert.True(t, c.Custody.Deposit.CheckWallet)
	assert.Equal(t, []tdriver.TokenAccount{
		{Address: "bank-btc", Token: T1, Owner: "bank"},
		{Address: "alice-btc", Token: T1, Owner: "alice", Amount: 1000},
	}, c.Network.Accounts)
	assert.Equal(t, driver.SQLite, c.DB.Driver)
	assert.Equal(t, "file:/tmp/tokenbank.sqlite", c.DB.DataSource)
	assert.Equal(t, 30*time.Second, c.DB.MaxIdleTime)
	// not overridden
	assert.Equal(t, "tb", c.DB.TablePrefix)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, "debug", cp.GetString("logging.level"))
	assert.True(t, cp.GetBool("custody.deposit.checkWallet"))
	assert.Equal(t, 10, cp.GetInt("db.maxOpenConns"))
	assert.True(t, cp.IsSet("bank.authority"))
}

func TestEnvironment(t *testing.T) {
	t.Setenv("TOKENBANK_DB_DRIVER", "postgres")
	t.Setenv("TOKENBANK_BANK_AUTHORITY", "admin")
	t.Setenv("TOKENBANK_BANK_TOKENS", T1.String()+","+T2.String())
	cp, err := NewProvider("")
	require.NoError(t, err)
	c, err := Load(cp)
	require.NoError(t, err)

	assert.Equal(t, driver.Postgres, c.DB.Driver)
	assert.Equal(t, tdriver.Identity("admin"), c.Bank.Authority)
	assert.Equal(t, []token.Identity{T1, T2}, c.Bank.Tokens)
}

func TestUnmarshalKey(t *testing.T) {
	cp, err := NewProvider("./testdata/tokenbank.yaml")
	require.NoError(t, err)

	var opts driver.Opts
	require.NoError(t, cp.UnmarshalKey("db", &opts))
	assert.Equal(t, driver.SQLite, opts.Driver)

	var deposit Deposit
	require.NoError(t, cp.UnmarshalKey("custody.deposit", &deposit))
	assert.True(t, deposit.CheckWallet)

	assert.EqualError(t, cp.UnmarshalKey("custody.missing", &deposit), "key [custody.missing] not found")
}

func TestMergeConfig(t *testing.T) {
	cp, err := NewProvider("")
	require.NoError(t, err)
	require.NoError(t, cp.MergeConfig([]byte("rest:\n  address: 0.0.0.0:80\n")))
	c, err := Load(cp)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:80", c.REST.Address)
}

func TestValidate(t *testing.T) {
	valid := func() *Configuration {
		return &Configuration{
			Bank:    Bank{Authority: "bank", Tokens: []token.Identity{T1}},
			Custody: Custody{Accounts: []CustodyAccount{{Token: T1, Address: "bank-t1"}}},
			Network: Network{Accounts: []tdriver.TokenAccount{{Address: "bank-t1", Token: T1, Owner: "bank"}}},
			DB:      driver.Opts{Driver: driver.Memory},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr string
	}{
		{"unknown driver", func(c *Configuration) { c.DB.Driver = "mysql" }, "unknown db driver [mysql]"},
		{"tokens without authority", func(c *Configuration) { c.Bank.Authority = "" }, "bank.tokens requires bank.authority"},
		{"incomplete custody account", func(c *Configuration) { c.Custody.Accounts[0].Address = "" }, "is incomplete"},
		{"duplicate custody account", func(c *Configuration) {
			c.Custody.Accounts = append(c.Custody.Accounts, CustodyAccount{Token: T1, Address: "other"})
		}, "multiple custody accounts"},
		{"duplicate network account", func(c *Configuration) {
			c.Network.Accounts = append(c.Network.Accounts, c.Network.Accounts[0])
		}, "duplicate network account [bank-t1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeQuantity(t *testing.T) {
	var out struct {
		Amount token.Quantity
	}
	require.NoError(t, Decode(map[string]interface{}{"amount": "0x10"}, &out))
	assert.Equal(t, token.Quantity(16), out.Amount)
	require.NoError(t, Decode(map[string]interface{}{"amount": 42}, &out))
	assert.Equal(t, token.Quantity(42), out.Amount)
	assert.Error(t, Decode(map[string]interface{}{"amount": "-1"}, &out))
}
