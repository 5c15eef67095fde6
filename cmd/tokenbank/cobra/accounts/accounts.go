/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package accounts

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger-labs/token-custody/cmd/tokenbank/cobra/common"
	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/bank"
	"github.com/hyperledger-labs/token-custody/token/services/custody"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type accountView struct {
	Owner    driver.Identity `json:"owner"`
	Balances []bank.Balance  `json:"balances"`
}

// Cmd returns the Cobra Command for managing ledger accounts
func Cmd() *cobra.Command {
	common.AddCallerFlag(initCmd, "identity of the account owner")
	cmd.AddCommand(initCmd, showCmd, listCmd)
	return cmd
}

var cmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage ledger accounts.",
	Long:  `Create and inspect the per-owner ledger accounts of the bank.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the empty ledger account of the caller.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return errors.New("trailing args detected")
		}
		auth, err := common.Authorization("")
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return common.Run(cmd.Context(), func(s *custody.Service) error {
			if err := s.InitializeAccount(cmd.Context(), auth); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account of %s initialized\n", auth.Caller)
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <owner>",
	Short: "Print the balances of an owner.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return common.Run(cmd.Context(), func(s *custody.Service) error {
			account, err := s.Account(cmd.Context(), driver.Identity(args[0]))
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(accountView{Owner: account.Owner(), Balances: account.Balances()}, "", "  ")
			if err != nil {
				return errors.Wrap(err, "failed marshalling account")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the owners of a ledger account.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return errors.New("trailing args detected")
		}
		cmd.SilenceUsage = true
		return common.Run(cmd.Context(), func(s *custody.Service) error {
			owners, err := s.Owners(cmd.Context())
			if err != nil {
				return err
			}
			for _, owner := range owners {
				fmt.Fprintln(cmd.OutOrStdout(), owner.String())
			}
			return nil
		})
	},
}
