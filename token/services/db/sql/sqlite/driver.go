/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sqlite

import (
	"database/sql"
	"strings"

	"github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/hyperledger-labs/token-custody/token/services/db/sql/common"
	"github.com/hyperledger-labs/token-custody/token/services/logging"
	"github.com/hyperledger-labs/token-custody/token/services/utils"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const driverName = "sqlite"

var logger = logging.MustGetLogger("db", "sqlite")

// Dialect is the SQLite flavour of the SQL store.
// SQLite has no row locks, writes are serialized by a single write connection instead.
var Dialect = common.Dialect{
	Name:              driver.SQLite,
	BytesType:         "BLOB",
	SelectForUpdate:   false,
	IsUniqueViolation: IsUniqueViolation,
}

type Driver struct {
	cache utils.LazyProvider[driver.Opts, *common.Store]
}

func NewNamedDriver() driver.NamedDriver {
	return driver.NamedDriver{
		Name:   driver.SQLite,
		Driver: NewDriver(),
	}
}

func NewDriver() *Driver {
	return &Driver{cache: utils.NewLazyProviderWithKeyMapper(key, NewStore)}
}

// Open returns the store at the passed data source, reusing an already open one
func (d *Driver) Open(opts driver.Opts) (driver.Store, error) {
	return d.cache.Get(opts)
}

// NewStore opens a read pool and a single-connection write pool on the passed data source
func NewStore(opts driver.Opts) (*common.Store, error) {
	readDB, err := OpenDB(opts.DataSource, opts.MaxOpenConns, opts.SkipPragmas)
	if err != nil {
		return nil, err
	}
	writeDB, err := OpenDB(opts.DataSource, 1, opts.SkipPragmas)
	if err != nil {
		common.Close(readDB)
		return nil, err
	}
	if opts.MaxIdleConns > 0 {
		readDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxIdleTime > 0 {
		readDB.SetConnMaxIdleTime(opts.MaxIdleTime)
	}
	return common.NewStore(readDB, writeDB, common.NewDBOptsFromOpts(opts), Dialect)
}

// OpenDB opens a sqlite database.
// Unless skipPragmas is set, the connection enables WAL, foreign keys and a busy timeout,
// and write transactions start with BEGIN IMMEDIATE.
func OpenDB(dataSource string, maxOpenConns int, skipPragmas bool) (*sql.DB, error) {
	if len(dataSource) == 0 {
		return nil, errors.New("empty data source")
	}
	if !skipPragmas {
		dataSource = WithPragmas(dataSource)
	}
	logger.Debugf("opening sqlite database [%s]", dataSource)
	db, err := sql.Open(driverName, dataSource)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open sqlite database")
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if err = db.Ping(); err != nil {
		common.Close(db)
		return nil, errors.Wrapf(err, "can't ping sqlite database")
	}
	return db, nil
}

// WithPragmas appends the default pragmas to the passed data source
func WithPragmas(dataSource string) string {
	sep := "?"
	if strings.Contains(dataSource, "?") {
		sep = "&"
	}
	return dataSource + sep + strings.Join([]string{
		"_pragma=busy_timeout(5000)",
		"_pragma=foreign_keys(1)",
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
		"_txlock=immediate",
	}, "&")
}

// IsUniqueViolation tells whether err is a sqlite primary key or unique constraint violation
func IsUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func key(k driver.Opts) string {
	return "sqlite" + k.DataSource + k.TablePrefix
}
