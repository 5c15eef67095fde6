/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdk

import (
	"context"

	tdriver "github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/bank"
	"github.com/hyperledger-labs/token-custody/token/services/config"
	"github.com/hyperledger-labs/token-custody/token/services/custody"
	"github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/hyperledger-labs/token-custody/token/services/logging"
	"github.com/hyperledger-labs/token-custody/token/services/metrics"
	"github.com/hyperledger-labs/token-custody/token/services/network/inmemory"
	"github.com/hyperledger-labs/token-custody/token/services/utils/cache"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
)

// newStore opens the store of the persistence selected by the configuration among the registered drivers
func newStore(in struct {
	dig.In
	Config  *config.Configuration
	Drivers []driver.NamedDriver `group:"db-drivers"`
}) (driver.Store, error) {
	for _, d := range in.Drivers {
		if d.Name == in.Config.DB.Driver {
			logger.Infof("opening [%s] store", d.Name)
			store, err := d.Driver.Open(in.Config.DB)
			if err != nil {
				return nil, errors.WithMessagef(err, "failed opening [%s] store", d.Name)
			}
			return store, nil
		}
	}
	return nil, errors.Errorf("no driver registered for [%s]", in.Config.DB.Driver)
}

// newNetwork creates the configured token accounts, and the custody accounts missing among them
// owned by the bank authority
func newNetwork(c *config.Configuration) (*inmemory.Network, error) {
	n := inmemory.NewNetwork()
	for _, account := range c.Network.Accounts {
		if err := n.CreateAccount(account); err != nil {
			return nil, errors.WithMessagef(err, "failed creating network account [%s]", account.Address)
		}
	}
	for _, account := range c.Custody.Accounts {
		if _, err := n.TokenAccount(context.Background(), account.Address); err == nil {
			continue
		}
		logger.Infof("creating custody account [%s] for [%s]", account.Address, account.Token)
		if err := n.CreateAccount(tdriver.TokenAccount{
			Address: account.Address,
			Token:   account.Token,
			Owner:   c.Bank.Authority,
		}); err != nil {
			return nil, errors.WithMessagef(err, "failed creating custody account [%s]", account.Address)
		}
	}
	return n, nil
}

func newDirectory(c *config.Configuration) inmemory.Directory {
	d := inmemory.Directory(c.CustodyAccounts())
	logger.Infof("custody accounts configured for tokens %s", logging.Keys(d))
	return d
}

func newRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

func newMetricsProvider(c *config.Configuration, r *prometheus.Registry) metrics.Provider {
	if !c.Metrics.Enabled {
		return metrics.NewDisabledProvider()
	}
	return metrics.NewPrometheusProvider(r)
}

func newAccountCache(c *config.Configuration) (cache.Cache[*bank.Account], error) {
	return cache.New[*bank.Account](c.Cache.MaxCost)
}

func newService(in struct {
	dig.In
	Config    *config.Configuration
	Store     driver.Store
	Network   tdriver.Network
	Directory tdriver.CustodyDirectory
	Metrics   *custody.Metrics
	Accounts  cache.Cache[*bank.Account]
}) *custody.Service {
	return custody.NewService(
		in.Store,
		in.Network,
		in.Directory,
		custody.WithWalletCheck(in.Config.Custody.Deposit.CheckWallet),
		custody.WithMetrics(in.Metrics),
		custody.WithAccountCache(in.Accounts),
	)
}
