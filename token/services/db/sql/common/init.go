/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"fmt"
	"regexp"

	"github.com/hyperledger-labs/token-custody/token/services/logging"
	"github.com/pkg/errors"
)

var logger = logging.MustGetLogger("db", "sql")

// table names stay below the 63 bytes postgres allows for identifiers
const maxPrefixLength = 50

var tablePrefixRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type tableNames struct {
	Bank      string
	Whitelist string
	Accounts  string
	Balances  string
}

// GetTableNames returns the table names prefixed with the passed prefix.
// An empty prefix defaults to "tb".
func GetTableNames(prefix string) (tableNames, error) {
	if len(prefix) == 0 {
		prefix = "tb"
	}
	if len(prefix) > maxPrefixLength || !tablePrefixRegexp.MatchString(prefix) {
		return tableNames{}, errors.Errorf("invalid table prefix [%s]", prefix)
	}
	name := func(table string) string { return fmt.Sprintf("%s_%s", prefix, table) }
	return tableNames{
		Bank:      name("bank"),
		Whitelist: name("whitelist"),
		Accounts:  name("accounts"),
		Balances:  name("balances"),
	}, nil
}
