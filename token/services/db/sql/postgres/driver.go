/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package postgres

import (
	"database/sql"

	"github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/hyperledger-labs/token-custody/token/services/db/sql/common"
	"github.com/hyperledger-labs/token-custody/token/services/logging"
	"github.com/hyperledger-labs/token-custody/token/services/utils"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
)

const (
	driverName = "pgx"
	// uniqueViolation is the SQLSTATE of unique_violation
	uniqueViolation = "23505"
)

var logger = logging.MustGetLogger("db", "postgres")

// Dialect is the PostgreSQL flavour of the SQL store
var Dialect = common.Dialect{
	Name:              driver.Postgres,
	BytesType:         "BYTEA",
	SelectForUpdate:   true,
	IsUniqueViolation: IsUniqueViolation,
}

type Driver struct {
	cache utils.LazyProvider[driver.Opts, *common.Store]
}

func NewNamedDriver() driver.NamedDriver {
	return driver.NamedDriver{
		Name:   driver.Postgres,
		Driver: NewDriver(),
	}
}

func NewDriver() *Driver {
	return &Driver{cache: utils.NewLazyProviderWithKeyMapper(key, NewStore)}
}

func (d *Driver) Open(opts driver.Opts) (driver.Store, error) {
	return d.cache.Get(opts)
}

func NewStore(opts driver.Opts) (*common.Store, error) {
	db, err := OpenDB(opts.DataSource, opts.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.MaxIdleTime)
	}
	return common.NewStore(db, db, common.NewDBOptsFromOpts(opts), Dialect)
}

func OpenDB(dataSource string, maxOpenConns int) (*sql.DB, error) {
	if len(dataSource) == 0 {
		return nil, errors.New("empty data source")
	}
	logger.Info("connecting to postgres database") // dataSource can contain a password
	db, err := sql.Open(driverName, dataSource)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open postgres database")
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if err = db.Ping(); err != nil {
		common.Close(db)
		return nil, errors.Wrapf(err, "can't ping postgres database")
	}
	return db, nil
}

// IsUniqueViolation tells whether err is a postgres unique_violation
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func key(k driver.Opts) string {
	return "postgres" + k.DataSource + k.TablePrefix
}
