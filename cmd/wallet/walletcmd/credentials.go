/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package walletcmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/trustbloc/wallet/cmd/common"
	"github.com/trustbloc/wallet/pkg/controller"
	"github.com/trustbloc/wallet/pkg/view"
)

// GetCredentialsCmd returns the command group managing stored credentials.
func GetCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage stored credentials",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	cmd.AddCommand(listCmd(), showCmd(), deleteCmd())

	return cmd
}

func listCmd() *cobra.Command {
	return credentialsSubCmd(&cobra.Command{
		Use:   "list",
		Short: "List stored credentials, newest first",
		Args:  cobra.NoArgs,
	}, func(cmd *cobra.Command, s *session, _ []string) error {
		vm, err := s.dispatch(commandContext(cmd), controller.Ready{})
		if err != nil {
			return err
		}

		return printView(cmd, vm.Credential.Credentials)
	})
}

func showCmd() *cobra.Command {
	return credentialsSubCmd(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored credential",
		Args:  cobra.ExactArgs(1),
	}, func(cmd *cobra.Command, s *session, args []string) error {
		ctx := commandContext(cmd)

		if _, err := s.dispatch(ctx, controller.Ready{}); err != nil {
			return err
		}

		vm, err := s.dispatch(ctx, controller.Select{ID: args[0]})
		if err != nil {
			return err
		}

		c, found := lo.Find(vm.Credential.Credentials, func(c view.Credential) bool {
			return c.ID == vm.Credential.ID
		})
		if !found {
			return fmt.Errorf("credential %s not found", args[0])
		}

		return printView(cmd, c)
	})
}

func deleteCmd() *cobra.Command {
	return credentialsSubCmd(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored credential",
		Args:  cobra.ExactArgs(1),
	}, func(cmd *cobra.Command, s *session, args []string) error {
		vm, err := s.dispatch(commandContext(cmd), controller.Delete{ID: args[0]})
		if err != nil {
			return err
		}

		return printView(cmd, vm.Credential.Credentials)
	})
}

func credentialsSubCmd(cmd *cobra.Command, run func(*cobra.Command, *session, []string) error) *cobra.Command {
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}

		defer s.Close()

		return run(cmd, s, args)
	}

	common.WalletFlags(cmd)

	return cmd
}
