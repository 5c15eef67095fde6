/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdk

import (
	"context"
	errors2 "errors"
	"net/http"
	"time"

	tdriver "github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/config"
	"github.com/hyperledger-labs/token-custody/token/services/custody"
	"github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/hyperledger-labs/token-custody/token/services/db/sql/memory"
	"github.com/hyperledger-labs/token-custody/token/services/db/sql/postgres"
	"github.com/hyperledger-labs/token-custody/token/services/db/sql/sqlite"
	"github.com/hyperledger-labs/token-custody/token/services/logging"
	"github.com/hyperledger-labs/token-custody/token/services/metrics"
	"github.com/hyperledger-labs/token-custody/token/services/network/inmemory"
	"github.com/hyperledger-labs/token-custody/token/services/rest"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/dig"
)

var logger = logging.MustGetLogger("token-sdk")

// SDK assembles the custody bank out of its configuration
type SDK struct {
	container *dig.Container
	cp        config.Provider
}

func NewSDK(cp config.Provider) *SDK {
	return &SDK{container: dig.New(), cp: cp}
}

func (p *SDK) Container() *dig.Container { return p.container }

func (p *SDK) Install() error {
	logger.Infof("installing token bank...")

	err := errors2.Join(
		p.Container().Provide(func() config.Provider { return p.cp }),
		p.Container().Provide(config.Load),
		p.Container().Provide(sqlite.NewNamedDriver, dig.Group("db-drivers")),
		p.Container().Provide(postgres.NewNamedDriver, dig.Group("db-drivers")),
		p.Container().Provide(memory.NewNamedDriver, dig.Group("db-drivers")),
		p.Container().Provide(newStore),
		p.Container().Provide(newNetwork),
		p.Container().Provide(func(n *inmemory.Network) tdriver.Network { return n }),
		p.Container().Provide(newDirectory),
		p.Container().Provide(func(d inmemory.Directory) tdriver.CustodyDirectory { return d }),
		p.Container().Provide(newRegistry),
		p.Container().Provide(newMetricsProvider),
		p.Container().Provide(custody.NewMetrics),
		p.Container().Provide(newAccountCache),
		p.Container().Provide(newService),
		p.Container().Provide(func(s *custody.Service, n tdriver.Network) *rest.Server { return rest.NewServer(s, n) }),
	)
	if err != nil {
		return errors.WithMessagef(err, "failed setting up dig container")
	}
	return nil
}

// Start applies the logging level, restores the bank from the store and seeds the configured whitelist
func (p *SDK) Start(ctx context.Context) error {
	err := p.Container().Invoke(func(c *config.Configuration, s *custody.Service) error {
		if err := logging.SetLevel(c.Logging.Level); err != nil {
			return err
		}
		if err := s.Load(ctx); err != nil {
			return err
		}
		if c.Bank.Authority.IsNone() {
			logger.Infof("no bank authority configured, skipping bootstrap")
			return nil
		}
		return s.Bootstrap(ctx, c.Bank.Authority, c.Bank.Tokens...)
	})
	if err != nil {
		return errors.WithMessagef(err, "failed starting token bank")
	}
	return nil
}

// Serve runs the REST API, and the metrics endpoint when enabled, until ctx is done or one of them fails
func (p *SDK) Serve(ctx context.Context) error {
	return p.Container().Invoke(func(c *config.Configuration, s *rest.Server, r *prometheus.Registry) error {
		servers := pool.New().WithContext(ctx).WithCancelOnError()
		servers.Go(func(ctx context.Context) error {
			return s.ListenAndServe(ctx, c.REST.Address)
		})
		if c.Metrics.Enabled {
			servers.Go(func(ctx context.Context) error {
				return serveMetrics(ctx, c.Metrics.Address, metrics.NewPrometheusProvider(r).Handler())
			})
		}
		return servers.Wait()
	})
}

// Stop closes the store
func (p *SDK) Stop() error {
	return p.Container().Invoke(func(store driver.Store) error {
		return store.Close()
	})
}

func serveMetrics(ctx context.Context, address string, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Addr: address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("failed shutting down metrics server: %v", err)
		}
	}()

	logger.Infof("serving metrics on [%s]", address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "failed serving metrics on [%s]", address)
	}
	return nil
}
