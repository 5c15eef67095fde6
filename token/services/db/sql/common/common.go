/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/pkg/errors"
)

// NewDBOpts models the options shared by the SQL stores
type NewDBOpts struct {
	DataSource   string
	TablePrefix  string
	CreateSchema bool
}

func NewDBOptsFromOpts(o driver.Opts) NewDBOpts {
	return NewDBOpts{
		DataSource:   o.DataSource,
		TablePrefix:  o.TablePrefix,
		CreateSchema: !o.SkipCreateTable,
	}
}

// Dialect captures what differs between the supported SQL backends
type Dialect struct {
	Name driver.Persistence
	// BytesType is the column type used for raw bytes
	BytesType string
	// SelectForUpdate tells whether the backend supports row locks with SELECT ... FOR UPDATE
	SelectForUpdate bool
	// IsUniqueViolation tells whether err reports a primary key or unique constraint violation
	IsUniqueViolation func(err error) bool
}

// querier is implemented by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InitSchema runs the passed schemas in a single transaction
func InitSchema(db *sql.DB, schemas ...string) (err error) {
	logger.Info("creating tables")
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if err1 := tx.Rollback(); err1 != nil {
				logger.Errorf("error rolling back: %s", err1.Error())
			}
		}
	}()
	for _, schema := range schemas {
		for _, stmt := range strings.Split(schema, ";") {
			if len(strings.TrimSpace(stmt)) == 0 {
				continue
			}
			logger.Debug(stmt)
			if _, err = tx.Exec(stmt); err != nil {
				return errors.Wrapf(err, "error creating schema: %s", stmt)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed committing schema")
	}
	return nil
}

type Closer interface {
	Close() error
}

func Close(closer Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Errorf("failed closing connection: %s", err)
	}
}
