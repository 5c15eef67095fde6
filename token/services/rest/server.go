/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/bank"
	"github.com/hyperledger-labs/token-custody/token/services/custody"
	"github.com/hyperledger-labs/token-custody/token/services/logging"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
)

var logger = logging.MustGetLogger("rest")

// CallerHeader carries the identity of the caller, authenticated upstream
const CallerHeader = "X-Caller"

// Service is the custody bank as seen by the API
type Service interface {
	InitializeBank(ctx context.Context, auth driver.Authorization) error
	InitializeAccount(ctx context.Context, auth driver.Authorization) error
	AddToken(ctx context.Context, auth driver.Authorization, tokenID token.Identity) error
	Deposit(ctx context.Context, auth driver.Authorization, req *custody.Request) (*custody.Receipt, error)
	Withdraw(ctx context.Context, auth driver.Authorization, req *custody.Request) (*custody.Receipt, error)
	IsWhitelisted(tokenID token.Identity) (bool, error)
	Tokens() ([]token.Identity, error)
	Account(ctx context.Context, owner driver.Identity) (*bank.Account, error)
	Balance(ctx context.Context, owner driver.Identity, tokenID token.Identity) (token.Quantity, error)
	Owners(ctx context.Context) ([]driver.Identity, error)
}

type Server struct {
	service Service
	network driver.Network
	engine  *gin.Engine
}

// NewServer exposes service over HTTP. If network is not nil, its token accounts can be queried too.
func NewServer(service Service, network driver.Network) *Server {
	s := &Server{service: service, network: network}
	s.engine = s.router()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves the API on address until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("failed shutting down rest server: %s", err)
		}
	}()
	logger.Infof("serving rest api on [%s]", address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "rest server on [%s] failed", address)
	}
	return nil
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), accessLog())

	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	v1.POST("/bank", s.initializeBank)
	v1.GET("/bank/tokens", s.tokens)
	v1.POST("/bank/tokens", s.addToken)
	v1.GET("/bank/tokens/:token", s.isWhitelisted)

	v1.GET("/accounts", s.owners)
	v1.POST("/accounts", s.initializeAccount)
	v1.GET("/accounts/:owner", s.account)
	v1.GET("/accounts/:owner/balances/:token", s.balance)
	v1.POST("/accounts/:owner/deposit", s.deposit)
	v1.POST("/accounts/:owner/withdraw", s.withdraw)

	if s.network != nil {
		v1.GET("/network/accounts/:address", s.tokenAccount)
	}
	return r
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("%s %s by [%s] -> %d in %s", c.Request.Method, c.Request.URL.Path, logging.Printable(c.GetHeader(CallerHeader)), c.Writer.Status(), time.Since(start))
	}
}
