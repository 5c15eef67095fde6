/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package memory

import (
	"crypto/sha256"
	"fmt"

	"github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/hyperledger-labs/token-custody/token/services/db/sql/common"
	"github.com/hyperledger-labs/token-custody/token/services/db/sql/sqlite"
	"github.com/hyperledger-labs/token-custody/token/services/utils"
)

type Driver struct {
	cache utils.LazyProvider[driver.Opts, *common.Store]
}

func NewNamedDriver() driver.NamedDriver {
	return driver.NamedDriver{
		Name:   driver.Memory,
		Driver: NewDriver(),
	}
}

func NewDriver() *Driver {
	return &Driver{cache: utils.NewLazyProviderWithKeyMapper(key, NewStore)}
}

// Open returns a pure go sqlite implementation in memory.
// Stores opened with the same data source and table prefix share their content.
func (d *Driver) Open(opts driver.Opts) (driver.Store, error) {
	return d.cache.Get(opts)
}

// NewStore opens an in-memory sqlite database on a single connection.
// The database lives as long as the connection is kept open.
func NewStore(opts driver.Opts) (*common.Store, error) {
	db, err := sqlite.OpenDB(DataSource(opts.DataSource), 1, false)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(1)
	return common.NewStore(db, db, common.NewDBOpts{
		TablePrefix:  opts.TablePrefix,
		CreateSchema: true,
	}, sqlite.Dialect)
}

// DataSource maps a name to a shared-cache in-memory sqlite data source
func DataSource(name string) string {
	h := sha256.Sum256([]byte(name))
	return fmt.Sprintf("file:%x?mode=memory&cache=shared", h[:16])
}

func key(k driver.Opts) string {
	return "memory" + k.DataSource + k.TablePrefix
}
