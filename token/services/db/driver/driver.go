/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package driver

import "time"

// Persistence names a storage backend
type Persistence string

const (
	SQLite   Persistence = "sqlite"
	Postgres Persistence = "postgres"
	Memory   Persistence = "memory"
)

// Opts models the options to open a Store
type Opts struct {
	Driver          Persistence   `mapstructure:"driver"`
	DataSource      string        `mapstructure:"dataSource"`
	TablePrefix     string        `mapstructure:"tablePrefix"`
	SkipCreateTable bool          `mapstructure:"skipCreateTable"`
	SkipPragmas     bool          `mapstructure:"skipPragmas"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	MaxIdleTime     time.Duration `mapstructure:"maxIdleTime"`
}

// Driver opens a Store for a given persistence
type Driver interface {
	Open(opts Opts) (Store, error)
}

// NamedDriver binds a Driver to the persistence it serves
type NamedDriver struct {
	Name   Persistence
	Driver Driver
}
