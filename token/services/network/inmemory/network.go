/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/logging"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
)

var logger = logging.MustGetLogger("network", "inmemory")

var (
	// ErrUnknownAccount is returned when an address does not identify any token account
	ErrUnknownAccount = errors.New("unknown token account")
	// ErrAccountFrozen is returned when a transfer touches a frozen token account
	ErrAccountFrozen = errors.New("token account frozen")
)

// TransferHook runs before a transfer is applied. A non-nil error rejects the transfer.
type TransferHook func(ctx context.Context, request *driver.TransferRequest) error

// Network is a simulated token ledger kept in memory.
// Every transfer is applied atomically under a single lock.
type Network struct {
	mu        sync.RWMutex
	accounts  map[string]*driver.TokenAccount
	processed map[string]struct{}
	hook      TransferHook
}

func NewNetwork() *Network {
	return &Network{
		accounts:  map[string]*driver.TokenAccount{},
		processed: map[string]struct{}{},
	}
}

// CreateAccount opens a token account with the passed initial state
func (n *Network) CreateAccount(account driver.TokenAccount) error {
	if len(account.Address) == 0 {
		return errors.New("empty address")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.accounts[account.Address]; ok {
		return errors.Errorf("token account [%s] already exists", account.Address)
	}
	n.accounts[account.Address] = &account
	logger.Debugf("created token account [%s] for [%s] holding [%s]", account.Address, account.Owner, account.Token)
	return nil
}

// Mint creates amount new units in the account at address
func (n *Network) Mint(address string, amount token.Quantity) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	account, ok := n.accounts[address]
	if !ok {
		return errors.Wrapf(ErrUnknownAccount, "address [%s]", address)
	}
	sum, err := account.Amount.Add(amount)
	if err != nil {
		return errors.Wrapf(err, "failed minting [%d] to [%s]", amount, address)
	}
	account.Amount = sum
	return nil
}

// SetFrozen freezes or thaws the account at address
func (n *Network) SetFrozen(address string, frozen bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	account, ok := n.accounts[address]
	if !ok {
		return errors.Wrapf(ErrUnknownAccount, "address [%s]", address)
	}
	account.Frozen = frozen
	return nil
}

// SetTransferHook installs a hook that runs before every transfer
func (n *Network) SetTransferHook(hook TransferHook) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hook = hook
}

// Transfer moves request.Amount units from request.From to request.To.
// The request must be signed by the owner of the source account.
// A request whose ID was already applied is acknowledged without moving funds again.
func (n *Network) Transfer(ctx context.Context, request *driver.TransferRequest) error {
	if request == nil {
		return errors.New("nil transfer request")
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(request.ID) != 0 {
		if _, ok := n.processed[request.ID]; ok {
			logger.Warnf("transfer [%s] already applied", request.ID)
			return nil
		}
	}
	if n.hook != nil {
		if err := n.hook(ctx, request); err != nil {
			return err
		}
	}

	from, ok := n.accounts[request.From]
	if !ok {
		return errors.Wrapf(ErrUnknownAccount, "source [%s]", request.From)
	}
	to, ok := n.accounts[request.To]
	if !ok {
		return errors.Wrapf(ErrUnknownAccount, "destination [%s]", request.To)
	}
	if request.From == request.To {
		return errors.Errorf("source and destination are the same account [%s]", request.From)
	}
	if from.Token != request.Token || to.Token != request.Token {
		return errors.Wrapf(driver.ErrTokenMismatch, "transfer of [%s] from [%s] holding [%s] to [%s] holding [%s]", request.Token, from.Address, from.Token, to.Address, to.Token)
	}
	if from.Owner != request.Authority {
		return errors.Wrapf(driver.ErrUnauthorized, "[%s] does not own [%s]", request.Authority, from.Address)
	}
	if from.Frozen {
		return errors.Wrapf(ErrAccountFrozen, "source [%s]", from.Address)
	}
	if to.Frozen {
		return errors.Wrapf(ErrAccountFrozen, "destination [%s]", to.Address)
	}
	debited, err := from.Amount.Sub(request.Amount)
	if err != nil {
		return errors.Wrapf(driver.ErrInsufficientWalletBalance, "[%s] holds [%d], requested [%d]", from.Address, from.Amount, request.Amount)
	}
	credited, err := to.Amount.Add(request.Amount)
	if err != nil {
		return errors.Wrapf(err, "destination [%s]", to.Address)
	}

	from.Amount = debited
	to.Amount = credited
	if len(request.ID) != 0 {
		n.processed[request.ID] = struct{}{}
	}
	logger.Debugf("transferred [%d] of [%s] from [%s] to [%s] (request [%s])", request.Amount, request.Token, from.Address, to.Address, request.ID)
	return nil
}

// TokenAccount returns a copy of the account at address
func (n *Network) TokenAccount(_ context.Context, address string) (*driver.TokenAccount, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	account, ok := n.accounts[address]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAccount, "address [%s]", address)
	}
	cp := *account
	return &cp, nil
}

// TokenAccounts returns a copy of all the accounts, sorted by address
func (n *Network) TokenAccounts() []driver.TokenAccount {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res := make([]driver.TokenAccount, 0, len(n.accounts))
	for _, account := range n.accounts {
		res = append(res, *account)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Address < res[j].Address })
	return res
}

// Supply returns the total amount of tokenID held across all the accounts
func (n *Network) Supply(tokenID token.Identity) token.Quantity {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var supply token.Quantity
	for _, account := range n.accounts {
		if account.Token == tokenID {
			supply += account.Amount
		}
	}
	return supply
}
