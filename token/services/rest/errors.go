/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyperledger-labs/token-custody/token/services/custody"
)

type ErrorResponse struct {
	Error string `json:"error"`
	// Kind names the error kind, e.g. insufficient_user_balance
	Kind string `json:"kind"`
}

var statusByKind = map[string]int{
	"invalid_amount":              http.StatusBadRequest,
	"invalid_token":               http.StatusUnprocessableEntity,
	"token_mismatch":              http.StatusUnprocessableEntity,
	"insufficient_wallet_balance": http.StatusConflict,
	"insufficient_user_balance":   http.StatusConflict,
	"insufficient_balance":        http.StatusConflict,
	"ledger_overflow":             http.StatusConflict,
	"already_whitelisted":         http.StatusConflict,
	"account_exists":              http.StatusConflict,
	"bank_already_initialized":    http.StatusConflict,
	"unauthorized":                http.StatusForbidden,
	"account_not_found":           http.StatusNotFound,
	"bank_not_initialized":        http.StatusNotFound,
	"transfer_failed":             http.StatusBadGateway,
}

// StatusCode maps err to the HTTP status reporting it
func StatusCode(err error) int {
	if status, ok := statusByKind[custody.Outcome(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("%s %s failed: %+v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Kind: custody.Outcome(err)})
}

func writeBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "bad_request"})
}
