/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/custody"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
)

type TokenRequest struct {
	Token token.Identity `json:"token"`
}

type TransferRequest struct {
	Wallet string         `json:"wallet"`
	Token  token.Identity `json:"token"`
	Amount token.Quantity `json:"amount"`
}

type BalanceResponse struct {
	Token  token.Identity `json:"token"`
	Amount token.Quantity `json:"amount"`
}

type AccountResponse struct {
	Owner    driver.Identity   `json:"owner"`
	Balances []BalanceResponse `json:"balances"`
}

type WhitelistResponse struct {
	Token       token.Identity `json:"token"`
	Whitelisted bool           `json:"whitelisted"`
}

type ReceiptResponse struct {
	RequestID string          `json:"requestId"`
	Owner     driver.Identity `json:"owner"`
	Wallet    string          `json:"wallet"`
	Custody   string          `json:"custody"`
	Token     token.Identity  `json:"token"`
	Amount    token.Quantity  `json:"amount"`
	Balance   token.Quantity  `json:"balance"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) initializeBank(c *gin.Context) {
	auth := authorization(c)
	if err := s.service.InitializeBank(c.Request.Context(), auth); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"authority": auth.Caller})
}

func (s *Server) tokens(c *gin.Context) {
	tokens, err := s.service.Tokens()
	if err != nil {
		writeError(c, err)
		return
	}
	if tokens == nil {
		tokens = []token.Identity{}
	}
	c.JSON(http.StatusOK, tokens)
}

func (s *Server) addToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}
	if err := s.service.AddToken(c.Request.Context(), authorization(c), req.Token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, WhitelistResponse{Token: req.Token, Whitelisted: true})
}

func (s *Server) isWhitelisted(c *gin.Context) {
	id, ok := tokenParam(c)
	if !ok {
		return
	}
	whitelisted, err := s.service.IsWhitelisted(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, WhitelistResponse{Token: id, Whitelisted: whitelisted})
}

func (s *Server) owners(c *gin.Context) {
	owners, err := s.service.Owners(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if owners == nil {
		owners = []driver.Identity{}
	}
	c.JSON(http.StatusOK, owners)
}

func (s *Server) initializeAccount(c *gin.Context) {
	auth := authorization(c)
	if err := s.service.InitializeAccount(c.Request.Context(), auth); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, AccountResponse{Owner: auth.Caller, Balances: []BalanceResponse{}})
}

func (s *Server) account(c *gin.Context) {
	account, err := s.service.Account(c.Request.Context(), driver.Identity(c.Param("owner")))
	if err != nil {
		writeError(c, err)
		return
	}
	res := AccountResponse{Owner: account.Owner(), Balances: []BalanceResponse{}}
	for _, b := range account.Balances() {
		res.Balances = append(res.Balances, BalanceResponse{Token: b.Token, Amount: b.Amount})
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) balance(c *gin.Context) {
	id, ok := tokenParam(c)
	if !ok {
		return
	}
	amount, err := s.service.Balance(c.Request.Context(), driver.Identity(c.Param("owner")), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{Token: id, Amount: amount})
}

func (s *Server) deposit(c *gin.Context) {
	s.transfer(c, s.service.Deposit)
}

func (s *Server) withdraw(c *gin.Context) {
	s.transfer(c, s.service.Withdraw)
}

type transferFunc = func(ctx context.Context, auth driver.Authorization, req *custody.Request) (*custody.Receipt, error)

func (s *Server) transfer(c *gin.Context, op transferFunc) {
	auth := authorization(c)
	if owner := driver.Identity(c.Param("owner")); owner != auth.Caller {
		writeError(c, errors.Wrapf(driver.ErrUnauthorized, "[%s] cannot operate on the account of [%s]", auth.Caller, owner))
		return
	}
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}
	receipt, err := op(c.Request.Context(), auth, &custody.Request{
		Wallet: req.Wallet,
		Token:  req.Token,
		Amount: req.Amount,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ReceiptResponse{
		RequestID: receipt.RequestID,
		Owner:     receipt.Owner,
		Wallet:    receipt.Wallet,
		Custody:   receipt.Custody,
		Token:     receipt.Token,
		Amount:    receipt.Amount,
		Balance:   receipt.Balance,
	})
}

func (s *Server) tokenAccount(c *gin.Context) {
	account, err := s.network.TokenAccount(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Kind: "not_found"})
		return
	}
	c.JSON(http.StatusOK, account)
}

func authorization(c *gin.Context) driver.Authorization {
	return driver.Authorization{Caller: driver.Identity(c.GetHeader(CallerHeader))}
}

func tokenParam(c *gin.Context) (token.Identity, bool) {
	id, err := token.ParseIdentity(c.Param("token"))
	if err != nil {
		writeBadRequest(c, err)
		return token.Identity{}, false
	}
	return id, true
}
