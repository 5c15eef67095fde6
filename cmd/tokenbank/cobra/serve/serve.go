/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package serve

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hyperledger-labs/token-custody/cmd/tokenbank/cobra/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Cmd returns the Cobra Command for serving the bank
func Cmd() *cobra.Command {
	return cmd
}

var cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the token bank.",
	Long:  `Serve the REST API of the token bank, and its metrics when enabled, until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return errors.New("trailing args detected")
		}
		cmd.SilenceUsage = true

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := common.Start(ctx)
		if err != nil {
			return errors.WithMessage(err, "failed starting token bank")
		}
		defer func() {
			if err := p.Stop(); err != nil {
				cmd.PrintErrf("failed stopping token bank: %v\n", err)
			}
		}()
		return p.Serve(ctx)
	},
}
