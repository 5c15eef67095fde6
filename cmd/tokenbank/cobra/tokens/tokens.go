/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package tokens

import (
	"fmt"

	"github.com/hyperledger-labs/token-custody/cmd/tokenbank/cobra/common"
	"github.com/hyperledger-labs/token-custody/token/services/config"
	"github.com/hyperledger-labs/token-custody/token/services/custody"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Cmd returns the Cobra Command for managing the whitelist
func Cmd() *cobra.Command {
	common.AddCallerFlag(addCmd, "identity of the bank authority, defaults to bank.authority")
	cmd.AddCommand(addCmd, listCmd)
	return cmd
}

var cmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage the whitelist.",
	Long:  `Add and list the token types accepted by the bank.`,
}

var addCmd = &cobra.Command{
	Use:   "add <token>...",
	Short: "Whitelist token types.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]token.Identity, len(args))
		for i, arg := range args {
			id, err := token.ParseIdentity(arg)
			if err != nil {
				return errors.WithMessagef(err, "invalid token [%s]", arg)
			}
			ids[i] = id
		}
		cmd.SilenceUsage = true
		return common.Run(cmd.Context(), func(c *config.Configuration, s *custody.Service) error {
			auth, err := common.Authorization(c.Bank.Authority)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := s.AddToken(cmd.Context(), auth, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "whitelisted %s\n", id)
			}
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the whitelisted token types.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return errors.New("trailing args detected")
		}
		cmd.SilenceUsage = true
		return common.Run(cmd.Context(), func(s *custody.Service) error {
			ids, err := s.Tokens()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id.String())
			}
			return nil
		})
	},
}
