/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"context"
	"database/sql"
	errors2 "errors"
	"fmt"
	"time"

	tdriver "github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
)

// bankRowID is the primary key of the single row of the bank table
const bankRowID = 1

// Store is the SQL implementation of driver.Store
type Store struct {
	ReadDB  *sql.DB
	WriteDB *sql.DB
	Table   tableNames
	Dialect Dialect
}

func NewStore(readDB, writeDB *sql.DB, opts NewDBOpts, dialect Dialect) (*Store, error) {
	tables, err := GetTableNames(opts.TablePrefix)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get table names")
	}
	store := &Store{
		ReadDB:  readDB,
		WriteDB: writeDB,
		Table:   tables,
		Dialect: dialect,
	}
	if opts.CreateSchema {
		if err := InitSchema(writeDB, store.GetSchema()); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (db *Store) CreateBank(ctx context.Context, authority tdriver.Identity) error {
	query, err := NewInsertInto(db.Table.Bank).Rows("id, authority, created_at").Compile()
	if err != nil {
		return errors.Wrap(err, "failed compiling query")
	}
	logger.Debug(query, authority)
	if _, err := db.WriteDB.ExecContext(ctx, query, bankRowID, string(authority), time.Now().UTC()); err != nil {
		if db.Dialect.IsUniqueViolation(err) {
			return errors.WithStack(tdriver.ErrBankAlreadyInitialized)
		}
		return errors.Wrapf(err, "failed storing bank")
	}
	return nil
}

func (db *Store) GetBank(ctx context.Context) (*driver.BankRecord, error) {
	query, err := NewSelect("authority").From(db.Table.Bank).Where("id = $1").Compile()
	if err != nil {
		return nil, errors.Wrap(err, "failed compiling query")
	}
	logger.Debug(query)
	var authority string
	if err := db.ReadDB.QueryRowContext(ctx, query, bankRowID).Scan(&authority); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.WithStack(tdriver.ErrBankNotInitialized)
		}
		return nil, errors.Wrapf(err, "failed reading bank")
	}

	query, err = NewSelect("token").From(db.Table.Whitelist).OrderBy("token").Compile()
	if err != nil {
		return nil, errors.Wrap(err, "failed compiling query")
	}
	logger.Debug(query)
	rows, err := db.ReadDB.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "failed reading whitelist")
	}
	defer Close(rows)

	record := &driver.BankRecord{Authority: tdriver.Identity(authority)}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrapf(err, "failed scanning whitelist")
		}
		id, err := token.NewIdentity(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid whitelisted token")
		}
		record.Tokens = append(record.Tokens, id)
	}
	return record, rows.Err()
}

func (db *Store) AddToken(ctx context.Context, tokenID token.Identity) error {
	query, err := NewInsertInto(db.Table.Whitelist).Rows("token, created_at").Compile()
	if err != nil {
		return errors.Wrap(err, "failed compiling query")
	}
	logger.Debug(query, tokenID)
	if _, err := db.WriteDB.ExecContext(ctx, query, tokenID.Bytes(), time.Now().UTC()); err != nil {
		if db.Dialect.IsUniqueViolation(err) {
			return errors.Wrapf(tdriver.ErrAlreadyWhitelisted, "token [%s]", tokenID)
		}
		return errors.Wrapf(err, "failed storing token [%s]", tokenID)
	}
	return nil
}

func (db *Store) CreateAccount(ctx context.Context, owner tdriver.Identity) error {
	query, err := NewInsertInto(db.Table.Accounts).Rows("owner, created_at").Compile()
	if err != nil {
		return errors.Wrap(err, "failed compiling query")
	}
	logger.Debug(query, owner)
	if _, err := db.WriteDB.ExecContext(ctx, query, string(owner), time.Now().UTC()); err != nil {
		if db.Dialect.IsUniqueViolation(err) {
			return errors.Wrapf(tdriver.ErrAccountExists, "owner [%s]", owner)
		}
		return errors.Wrapf(err, "failed storing account [%s]", owner)
	}
	return nil
}

func (db *Store) GetAccount(ctx context.Context, owner tdriver.Identity) (*driver.AccountRecord, error) {
	return db.getAccount(ctx, db.ReadDB, owner, false)
}

func (db *Store) Owners(ctx context.Context) ([]tdriver.Identity, error) {
	query, err := NewSelect("owner").From(db.Table.Accounts).OrderBy("owner").Compile()
	if err != nil {
		return nil, errors.Wrap(err, "failed compiling query")
	}
	logger.Debug(query)
	rows, err := db.ReadDB.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "failed reading accounts")
	}
	defer Close(rows)

	var owners []tdriver.Identity
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, errors.Wrapf(err, "failed scanning accounts")
		}
		owners = append(owners, tdriver.Identity(owner))
	}
	return owners, rows.Err()
}

func (db *Store) NewLedgerTransaction(ctx context.Context) (driver.LedgerTransaction, error) {
	tx, err := db.WriteDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed starting a db transaction")
	}
	return &LedgerTransaction{tx: tx, db: db}, nil
}

func (db *Store) getAccount(ctx context.Context, q querier, owner tdriver.Identity, forUpdate bool) (*driver.AccountRecord, error) {
	query, err := NewSelect("owner").From(db.Table.Accounts).Where("owner = $1").ForUpdate(forUpdate && db.Dialect.SelectForUpdate).Compile()
	if err != nil {
		return nil, errors.Wrap(err, "failed compiling query")
	}
	logger.Debug(query, owner)
	var found string
	if err := q.QueryRowContext(ctx, query, string(owner)).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(tdriver.ErrAccountNotFound, "owner [%s]", owner)
		}
		return nil, errors.Wrapf(err, "failed reading account [%s]", owner)
	}

	query, err = NewSelect("token", "amount").From(db.Table.Balances).Where("owner = $1").OrderBy("token").Compile()
	if err != nil {
		return nil, errors.Wrap(err, "failed compiling query")
	}
	logger.Debug(query, owner)
	rows, err := q.QueryContext(ctx, query, string(owner))
	if err != nil {
		return nil, errors.Wrapf(err, "failed reading balances of [%s]", owner)
	}
	defer Close(rows)

	record := &driver.AccountRecord{Owner: owner}
	for rows.Next() {
		var raw []byte
		var amount string
		if err := rows.Scan(&raw, &amount); err != nil {
			return nil, errors.Wrapf(err, "failed scanning balances of [%s]", owner)
		}
		id, err := token.NewIdentity(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid token in balances of [%s]", owner)
		}
		qty, err := token.ToQuantity(amount)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid amount in balances of [%s]", owner)
		}
		record.Balances = append(record.Balances, driver.BalanceRecord{Token: id, Amount: qty})
	}
	return record, rows.Err()
}

func (db *Store) GetSchema() string {
	return fmt.Sprintf(`
		-- Bank
		CREATE TABLE IF NOT EXISTS %s (
			id INT NOT NULL PRIMARY KEY,
			authority TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		-- Whitelist
		CREATE TABLE IF NOT EXISTS %s (
			token %s NOT NULL PRIMARY KEY,
			created_at TIMESTAMP NOT NULL
		);

		-- Accounts
		CREATE TABLE IF NOT EXISTS %s (
			owner TEXT NOT NULL PRIMARY KEY,
			created_at TIMESTAMP NOT NULL
		);

		-- Balances
		CREATE TABLE IF NOT EXISTS %s (
			owner TEXT NOT NULL REFERENCES %s (owner),
			token %s NOT NULL REFERENCES %s (token),
			amount TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (owner, token)
		);`,
		db.Table.Bank,
		db.Table.Whitelist, db.Dialect.BytesType,
		db.Table.Accounts,
		db.Table.Balances, db.Table.Accounts, db.Dialect.BytesType, db.Table.Whitelist,
	)
}

func (db *Store) Close() error {
	logger.Info("closing database")
	if db.ReadDB != db.WriteDB {
		return errors2.Join(db.ReadDB.Close(), db.WriteDB.Close())
	}
	err := db.ReadDB.Close()
	if err != nil {
		return errors.Wrap(err, "could not close DB")
	}
	return nil
}
