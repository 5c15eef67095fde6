/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"context"

	"github.com/hyperledger-labs/token-custody/token/driver"
	sdk "github.com/hyperledger-labs/token-custody/token/sdk/dig"
	"github.com/hyperledger-labs/token-custody/token/services/config"
	"github.com/hyperledger-labs/token-custody/token/services/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var logger = logging.MustGetLogger("tokenbank")

// ConfigPath is the configuration file shared by every command
var ConfigPath string

// Caller is the identity commands act on behalf of
var Caller string

// AddConfigFlag registers the configuration file flag on cmd and its subcommands
func AddConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c", "", "path of the configuration file")
}

// AddCallerFlag registers the caller flag on cmd
func AddCallerFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVar(&Caller, "caller", "", usage)
}

// Start loads the configuration and starts the bank without serving it
func Start(ctx context.Context) (*sdk.SDK, error) {
	cp, err := config.NewProvider(ConfigPath)
	if err != nil {
		return nil, err
	}
	p := sdk.NewSDK(cp)
	if err := p.Install(); err != nil {
		return nil, err
	}
	if err := p.Start(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Run starts the bank, invokes function with the dependencies it asks for and stops the bank
func Run(ctx context.Context, function interface{}) error {
	p, err := Start(ctx)
	if err != nil {
		return err
	}
	invokeErr := p.Container().Invoke(function)
	if err := p.Stop(); err != nil {
		logger.Warnf("failed closing store: %v", err)
	}
	return invokeErr
}

// Authorization returns the authorization of the --caller flag, or of fallback when the flag is unset
func Authorization(fallback driver.Identity) (driver.Authorization, error) {
	caller := driver.Identity(Caller)
	if caller.IsNone() {
		caller = fallback
	}
	if caller.IsNone() {
		return driver.Authorization{}, errors.New("no caller given, use --caller")
	}
	return driver.Authorization{Caller: caller}, nil
}
