/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"os"

	"github.com/hyperledger-labs/token-custody/cmd/tokenbank/cobra/accounts"
	"github.com/hyperledger-labs/token-custody/cmd/tokenbank/cobra/common"
	"github.com/hyperledger-labs/token-custody/cmd/tokenbank/cobra/serve"
	"github.com/hyperledger-labs/token-custody/cmd/tokenbank/cobra/tokens"
	"github.com/hyperledger-labs/token-custody/cmd/tokenbank/cobra/version"
	"github.com/spf13/cobra"
)

// The main command describes the service and
// defaults to printing the help message.
var mainCmd = &cobra.Command{Use: "tokenbank"}

func main() {
	common.AddConfigFlag(mainCmd)
	mainCmd.AddCommand(serve.Cmd())
	mainCmd.AddCommand(tokens.Cmd())
	mainCmd.AddCommand(accounts.Cmd())
	mainCmd.AddCommand(version.Cmd())

	// On failure Cobra prints the usage message and error string, so we only
	// need to exit with a non-0 status
	if mainCmd.Execute() != nil {
		os.Exit(1)
	}
}
