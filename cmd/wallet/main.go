/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package main is the OpenID wallet command: a REST host for a wallet UI and one-shot issuance
// and presentation commands.
package main

import (
	"github.com/spf13/cobra"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/wallet/cmd/wallet/startcmd"
	"github.com/trustbloc/wallet/cmd/wallet/walletcmd"
)

var logger = log.New("wallet")

func main() {
	rootCmd := &cobra.Command{
		Use: "wallet",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	rootCmd.AddCommand(
		startcmd.GetStartCmd(),
		walletcmd.GetReceiveCmd(),
		walletcmd.GetPresentCmd(),
		walletcmd.GetCredentialsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to run wallet", log.WithError(err))
	}
}
