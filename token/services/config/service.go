/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"time"

	tdriver "github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
)

type Bank struct {
	Authority tdriver.Identity `mapstructure:"authority"`
	Tokens    []token.Identity `mapstructure:"tokens"`
}

// CustodyAccount binds a token type to the address of its pooled custody account
type CustodyAccount struct {
	Token   token.Identity `mapstructure:"token"`
	Address string         `mapstructure:"address"`
}

type Deposit struct {
	CheckWallet bool `mapstructure:"checkWallet"`
}

type Custody struct {
	Accounts []CustodyAccount `mapstructure:"accounts"`
	Deposit  Deposit          `mapstructure:"deposit"`
}

type Network struct {
	Accounts []tdriver.TokenAccount `mapstructure:"accounts"`
}

type REST struct {
	Address string `mapstructure:"address"`
}

type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type Cache struct {
	MaxCost int64 `mapstructure:"maxCost"`
}

// Configuration is the whole configuration of the token custody bank
type Configuration struct {
	Bank    Bank        `mapstructure:"bank"`
	Custody Custody     `mapstructure:"custody"`
	Network Network     `mapstructure:"network"`
	DB      driver.Opts `mapstructure:"db"`
	REST    REST        `mapstructure:"rest"`
	Metrics Metrics     `mapstructure:"metrics"`
	Logging Logging     `mapstructure:"logging"`
	Cache   Cache       `mapstructure:"cache"`
}

// Load decodes and validates the configuration served by cp
func Load(cp Provider) (*Configuration, error) {
	c := &Configuration{}
	if err := cp.UnmarshalKey("", c); err != nil {
		return nil, errors.WithMessagef(err, "failed decoding configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid configuration")
	}
	return c, nil
}

func (c *Configuration) Validate() error {
	switch c.DB.Driver {
	case driver.SQLite, driver.Postgres, driver.Memory:
	default:
		return errors.Errorf("unknown db driver [%s]", c.DB.Driver)
	}
	if c.DB.MaxIdleTime < 0 || c.DB.MaxIdleTime > 24*time.Hour {
		return errors.Errorf("db.maxIdleTime out of range [%s]", c.DB.MaxIdleTime)
	}
	if len(c.Bank.Tokens) != 0 && c.Bank.Authority.IsNone() {
		return errors.New("bank.tokens requires bank.authority")
	}
	seen := map[token.Identity]struct{}{}
	for _, account := range c.Custody.Accounts {
		if account.Token.IsZero() || len(account.Address) == 0 {
			return errors.Errorf("custody account [%s] for token [%s] is incomplete", account.Address, account.Token)
		}
		if _, ok := seen[account.Token]; ok {
			return errors.Errorf("multiple custody accounts for token [%s]", account.Token)
		}
		seen[account.Token] = struct{}{}
	}
	addresses := map[string]struct{}{}
	for _, account := range c.Network.Accounts {
		if len(account.Address) == 0 {
			return errors.New("network account without address")
		}
		if _, ok := addresses[account.Address]; ok {
			return errors.Errorf("duplicate network account [%s]", account.Address)
		}
		addresses[account.Address] = struct{}{}
	}
	return nil
}

// CustodyAccounts maps every configured token type to its custody account address
func (c *Configuration) CustodyAccounts() map[token.Identity]string {
	res := make(map[token.Identity]string, len(c.Custody.Accounts))
	for _, account := range c.Custody.Accounts {
		res[account.Token] = account.Address
	}
	return res
}
