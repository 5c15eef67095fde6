/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"context"
	"database/sql"
	"time"

	tdriver "github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
)

// LedgerTransaction stages balance updates in a SQL transaction
type LedgerTransaction struct {
	tx *sql.Tx
	db *Store
}

func (t *LedgerTransaction) GetAccount(ctx context.Context, owner tdriver.Identity) (*driver.AccountRecord, error) {
	return t.db.getAccount(ctx, t.tx, owner, true)
}

func (t *LedgerTransaction) SetBalance(ctx context.Context, owner tdriver.Identity, tokenID token.Identity, amount token.Quantity) error {
	query, err := NewInsertInto(t.db.Table.Balances).
		Rows("owner, token, amount, updated_at").
		OnConflictDoUpdate("owner, token", "amount, updated_at").
		Compile()
	if err != nil {
		return errors.Wrap(err, "failed compiling query")
	}
	logger.Debug(query, owner, tokenID, amount)
	if _, err := t.tx.ExecContext(ctx, query, string(owner), tokenID.Bytes(), amount.Decimal(), time.Now().UTC()); err != nil {
		return errors.Wrapf(err, "failed storing balance of [%s] for [%s]", owner, tokenID)
	}
	return nil
}

func (t *LedgerTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *LedgerTransaction) Rollback() error {
	return t.tx.Rollback()
}
