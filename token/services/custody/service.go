/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package custody

import (
	"context"
	errors2 "errors"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-uuid"
	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/bank"
	dbdriver "github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/hyperledger-labs/token-custody/token/services/logging"
	"github.com/hyperledger-labs/token-custody/token/services/metrics"
	"github.com/hyperledger-labs/token-custody/token/services/utils/cache"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace"
)

var logger = logging.MustGetLogger("custody")

const (
	DepositOperation           = "deposit"
	WithdrawOperation          = "withdraw"
	AddTokenOperation          = "add_token"
	InitializeBankOperation    = "initialize_bank"
	InitializeAccountOperation = "initialize_account"
)

// Request asks to move Amount units of Token between the caller's wallet and the bank's custody account
type Request struct {
	// Wallet is the address of the caller's token account on the network
	Wallet string
	Token  token.Identity
	Amount token.Quantity
}

// Receipt describes a completed deposit or withdrawal
type Receipt struct {
	// RequestID identifies the transfer on the network
	RequestID string
	Owner     driver.Identity
	Wallet    string
	Custody   string
	Token     token.Identity
	Amount    token.Quantity
	// Balance is the owner's entitlement for Token after the operation
	Balance token.Quantity
}

type Option func(*Service)

// WithWalletCheck makes deposits fail fast with driver.ErrInsufficientWalletBalance
// when the wallet cannot cover the amount, before the transfer is submitted
func WithWalletCheck(enabled bool) Option {
	return func(s *Service) { s.checkWallet = enabled }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAccountCache caches ledger accounts for queries
func WithAccountCache(c cache.Cache[*bank.Account]) Option {
	return func(s *Service) { s.accounts = c }
}

// Service is the custody bank: it keeps the whitelist and the per-owner ledger
// consistent with the transfers it submits to the network.
type Service struct {
	store     dbdriver.Store
	network   driver.Network
	directory driver.CustodyDirectory

	bank        atomic.Pointer[bank.Bank]
	locker      *ownerLocker
	accounts    cache.Cache[*bank.Account]
	metrics     *Metrics
	checkWallet bool
}

func NewService(store dbdriver.Store, network driver.Network, directory driver.CustodyDirectory, opts ...Option) *Service {
	s := &Service{
		store:     store,
		network:   network,
		directory: directory,
		locker:    newOwnerLocker(),
		accounts:  cache.NewNoCache[*bank.Account](),
		metrics:   NewMetrics(metrics.NewDisabledProvider()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores the whitelist from the store. A store with no bank is not an error.
func (s *Service) Load(ctx context.Context) error {
	record, err := s.store.GetBank(ctx)
	if errors.Is(err, driver.ErrBankNotInitialized) {
		logger.Infof("no bank found in store")
		return nil
	}
	if err != nil {
		return errors.WithMessagef(err, "failed loading bank")
	}
	b := bank.Restore(record.Authority, record.Tokens...)
	s.bank.Store(b)
	s.metrics.WhitelistedTokens.With().Set(float64(b.Size()))
	logger.Infof("loaded bank of [%s] with [%d] whitelisted tokens", b.Authority(), b.Size())
	return nil
}

// InitializeBank creates the empty whitelist administered by the caller
func (s *Service) InitializeBank(ctx context.Context, auth driver.Authorization) (err error) {
	defer s.observe(ctx, InitializeBankOperation, time.Now(), &err)

	if auth.Caller.IsNone() {
		return errors.Wrap(driver.ErrUnauthorized, "missing bank authority")
	}
	if err := s.store.CreateBank(ctx, auth.Caller); err != nil {
		return errors.WithMessagef(err, "failed initializing bank")
	}
	s.bank.Store(bank.NewBank(auth.Caller))
	s.metrics.WhitelistedTokens.With().Set(0)
	logger.Infof("bank initialized by [%s]", auth.Caller)
	return nil
}

// Bootstrap initializes the bank administered by authority, unless the store holds one already,
// and whitelists the passed tokens. Tokens already whitelisted are skipped.
func (s *Service) Bootstrap(ctx context.Context, authority driver.Identity, tokens ...token.Identity) error {
	auth := driver.Authorization{Caller: authority}
	if b := s.bank.Load(); b == nil {
		if err := s.InitializeBank(ctx, auth); err != nil {
			return err
		}
	} else if b.Authority() != authority {
		return errors.Wrapf(driver.ErrUnauthorized, "bank administered by [%s], not by [%s]", b.Authority(), authority)
	}
	for _, id := range tokens {
		if err := s.AddToken(ctx, auth, id); err != nil && !errors.Is(err, driver.ErrAlreadyWhitelisted) {
			return errors.WithMessagef(err, "failed whitelisting [%s]", id)
		}
	}
	return nil
}

// InitializeAccount creates the empty ledger account of the caller
func (s *Service) InitializeAccount(ctx context.Context, auth driver.Authorization) (err error) {
	defer s.observe(ctx, InitializeAccountOperation, time.Now(), &err)

	if auth.Caller.IsNone() {
		return errors.Wrap(driver.ErrUnauthorized, "missing account owner")
	}
	if err := s.store.CreateAccount(ctx, auth.Caller); err != nil {
		return errors.WithMessagef(err, "failed initializing account")
	}
	logger.Infof("account initialized for [%s]", logging.Prefix(auth.Caller.String()))
	return nil
}

// AddToken whitelists tokenID. Only the bank authority may call it.
func (s *Service) AddToken(ctx context.Context, auth driver.Authorization, tokenID token.Identity) (err error) {
	defer s.observe(ctx, AddTokenOperation, time.Now(), &err)

	b, err := s.Bank()
	if err != nil {
		return err
	}
	if auth.Caller != b.Authority() {
		return errors.Wrapf(driver.ErrUnauthorized, "[%s] is not the bank authority", auth.Caller)
	}
	err = b.AddTokenWith(tokenID, func(id token.Identity) error {
		return s.store.AddToken(ctx, id)
	})
	if err != nil {
		return err
	}
	s.metrics.WhitelistedTokens.With().Set(float64(b.Size()))
	logger.Infof("token [%s] whitelisted", tokenID)
	return nil
}

// Deposit moves req.Amount of req.Token from the caller's wallet to the custody account
// and credits the caller's ledger account. Either both happen or neither does.
func (s *Service) Deposit(ctx context.Context, auth driver.Authorization, req *Request) (receipt *Receipt, err error) {
	defer s.observe(ctx, DepositOperation, time.Now(), &err)
	return s.transfer(ctx, DepositOperation, auth, req)
}

// Withdraw moves req.Amount of req.Token from the custody account to the caller's wallet
// and debits the caller's ledger account. Either both happen or neither does.
func (s *Service) Withdraw(ctx context.Context, auth driver.Authorization, req *Request) (receipt *Receipt, err error) {
	defer s.observe(ctx, WithdrawOperation, time.Now(), &err)
	return s.transfer(ctx, WithdrawOperation, auth, req)
}

func (s *Service) transfer(ctx context.Context, operation string, auth driver.Authorization, req *Request) (*Receipt, error) {
	span := trace.SpanFromContext(ctx)
	owner := auth.Caller
	if owner.IsNone() {
		return nil, errors.Wrap(driver.ErrUnauthorized, "missing owner")
	}
	if req == nil {
		return nil, errors.Wrapf(driver.ErrInvalidAmount, "missing %s request", operation)
	}
	b, err := s.Bank()
	if err != nil {
		return nil, err
	}
	// a token outside the whitelist is rejected whatever the amount
	if !b.IsWhitelisted(req.Token) {
		return nil, errors.Wrapf(driver.ErrInvalidToken, "token [%s]", req.Token)
	}
	if req.Amount.IsZero() {
		return nil, errors.Wrapf(driver.ErrInvalidAmount, "%s of zero tokens", operation)
	}

	span.AddEvent("check_accounts")
	custody, err := s.directory.CustodyAccount(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	custodyAccount, err := s.tokenAccount(ctx, custody, req.Token)
	if err != nil {
		return nil, err
	}
	wallet, err := s.tokenAccount(ctx, req.Wallet, req.Token)
	if err != nil {
		return nil, err
	}

	transfer := &driver.TransferRequest{
		Token:  req.Token,
		Amount: req.Amount,
	}
	if operation == DepositOperation {
		if s.checkWallet && wallet.Amount < req.Amount {
			return nil, errors.Wrapf(driver.ErrInsufficientWalletBalance, "wallet [%s] holds [%d], requested [%d]", wallet.Address, wallet.Amount, req.Amount)
		}
		transfer.From, transfer.To, transfer.Authority = wallet.Address, custodyAccount.Address, owner
	} else {
		transfer.From, transfer.To, transfer.Authority = custodyAccount.Address, wallet.Address, b.Authority()
	}

	span.AddEvent("acquire_owner_lock")
	unlock := s.locker.Lock(owner)
	defer unlock()

	tx, err := s.store.NewLedgerTransaction(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := tx.Rollback(); err != nil {
			logger.Errorf("failed rolling back ledger transaction of [%s]: %s", owner, err)
		}
	}()

	record, err := tx.GetAccount(ctx, owner)
	if err != nil {
		return nil, err
	}
	account, err := toAccount(record)
	if err != nil {
		return nil, err
	}
	if operation == DepositOperation {
		if err := account.Credit(req.Token, req.Amount); err != nil {
			return nil, err
		}
	} else {
		if !account.HasAtLeast(req.Token, req.Amount) {
			return nil, errors.Wrapf(driver.ErrInsufficientUserBalance, "[%s] is entitled to [%d] of [%s], requested [%d]", owner, account.BalanceOf(req.Token), req.Token, req.Amount)
		}
		if err := account.Debit(req.Token, req.Amount); err != nil {
			return nil, err
		}
	}
	if err := tx.SetBalance(ctx, owner, req.Token, account.BalanceOf(req.Token)); err != nil {
		return nil, err
	}

	transfer.ID, err = uuid.GenerateUUID()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate transfer id")
	}
	span.AddEvent("submit_transfer")
	logger.Debugf("submitting transfer [%s] of [%d] [%s] from [%s] to [%s]", transfer.ID, transfer.Amount, transfer.Token, transfer.From, transfer.To)
	if err := s.network.Transfer(ctx, transfer); err != nil {
		return nil, errors.WithStack(driver.NewTransferError(err))
	}

	span.AddEvent("commit_ledger")
	if err := tx.Commit(); err != nil {
		// the network applied the transfer, the ledger must be reconciled with it by hand
		logger.Errorf("transfer [%s] of [%d] [%s] for [%s] applied but ledger commit failed: %s", transfer.ID, transfer.Amount, transfer.Token, owner, err)
		s.accounts.Delete(owner.String())
		return nil, errors.Wrapf(err, "failed committing ledger after transfer [%s]", transfer.ID)
	}
	committed = true
	s.accounts.Add(owner.String(), account)

	if operation == DepositOperation {
		logger.Infof("deposit of %d tokens [%s] from [%s]", req.Amount, req.Token, logging.Prefix(owner.String()))
	} else {
		logger.Infof("withdrawal of %d tokens [%s] to [%s]", req.Amount, req.Token, logging.Prefix(owner.String()))
	}
	return &Receipt{
		RequestID: transfer.ID,
		Owner:     owner,
		Wallet:    wallet.Address,
		Custody:   custodyAccount.Address,
		Token:     req.Token,
		Amount:    req.Amount,
		Balance:   account.BalanceOf(req.Token),
	}, nil
}

// tokenAccount fetches the network account at address and checks it holds tokenID
func (s *Service) tokenAccount(ctx context.Context, address string, tokenID token.Identity) (*driver.TokenAccount, error) {
	account, err := s.network.TokenAccount(ctx, address)
	if err != nil {
		return nil, errors.WithMessagef(errors2.Join(driver.ErrTokenMismatch, err), "token account [%s] not available", address)
	}
	if account.Token != tokenID {
		return nil, errors.Wrapf(driver.ErrTokenMismatch, "token account [%s] holds [%s], not [%s]", address, account.Token, tokenID)
	}
	return account, nil
}

// Bank returns the whitelist registry, or driver.ErrBankNotInitialized
func (s *Service) Bank() (*bank.Bank, error) {
	b := s.bank.Load()
	if b == nil {
		return nil, errors.WithStack(driver.ErrBankNotInitialized)
	}
	return b, nil
}

func (s *Service) IsWhitelisted(tokenID token.Identity) (bool, error) {
	b, err := s.Bank()
	if err != nil {
		return false, err
	}
	return b.IsWhitelisted(tokenID), nil
}

// Tokens returns the whitelisted token types, sorted
func (s *Service) Tokens() ([]token.Identity, error) {
	b, err := s.Bank()
	if err != nil {
		return nil, err
	}
	return b.Tokens(), nil
}

// Account returns a copy of the ledger account of owner
func (s *Service) Account(ctx context.Context, owner driver.Identity) (*bank.Account, error) {
	if account, ok := s.accounts.Get(owner.String()); ok {
		return account.Clone(), nil
	}
	// loads wait for in-flight operations of the same owner, so a stale account is never cached
	unlock := s.locker.Lock(owner)
	defer unlock()
	account, _, err := s.accounts.GetOrLoad(owner.String(), func() (*bank.Account, error) {
		record, err := s.store.GetAccount(ctx, owner)
		if err != nil {
			return nil, err
		}
		return toAccount(record)
	})
	if err != nil {
		return nil, err
	}
	return account.Clone(), nil
}

// Balance returns the entitlement of owner for tokenID
func (s *Service) Balance(ctx context.Context, owner driver.Identity, tokenID token.Identity) (token.Quantity, error) {
	account, err := s.Account(ctx, owner)
	if err != nil {
		return 0, err
	}
	return account.BalanceOf(tokenID), nil
}

// Owners returns the owners of all the ledger accounts
func (s *Service) Owners(ctx context.Context) ([]driver.Identity, error) {
	return s.store.Owners(ctx)
}

func (s *Service) observe(ctx context.Context, operation string, start time.Time, err *error) {
	s.metrics.Observe(operation, start, *err)
	trace.SpanFromContext(ctx).AddEvent("end_" + operation)
	if *err != nil {
		logger.Debugf("%s failed: %s", operation, *err)
		return
	}
	logger.Debugf("%s succeeded in %s", operation, time.Since(start))
}

func toAccount(record *dbdriver.AccountRecord) (*bank.Account, error) {
	balances := make([]bank.Balance, len(record.Balances))
	for i, b := range record.Balances {
		balances[i] = bank.Balance{Token: b.Token, Amount: b.Amount}
	}
	return bank.RestoreAccount(record.Owner, balances...)
}
