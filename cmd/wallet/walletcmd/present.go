/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package walletcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	cmdutils "github.com/trustbloc/cmdutil-go/pkg/utils/cmd"

	"github.com/trustbloc/wallet/cmd/common"
	"github.com/trustbloc/wallet/pkg/controller"
	"github.com/trustbloc/wallet/pkg/model"
)

const (
	requestFlagName  = "request"
	requestEnvKey    = "WALLET_REQUEST"
	requestFlagUsage = "Authorization request of the verifier: an openid4vp:// URI or a request_uri to fetch. " +
		commonEnvVarUsageText + requestEnvKey
)

// GetPresentCmd returns the command answering a verifier's presentation request.
func GetPresentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "present",
		Short: "Present stored credentials to a verifier",
		Long:  "Resolve a presentation request, then submit the matching stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := cmdutils.GetUserSetVarFromString(cmd, requestFlagName, requestEnvKey, false)
			if err != nil {
				return err
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}

			defer s.Close()

			return present(cmd, s, request)
		},
	}

	common.WalletFlags(cmd)

	cmd.Flags().StringP(requestFlagName, "", "", requestFlagUsage)

	return cmd
}

func present(cmd *cobra.Command, s *session, request string) error {
	ctx := commandContext(cmd)

	if _, err := s.dispatch(ctx, controller.Ready{}); err != nil {
		return err
	}

	vm, err := s.dispatch(ctx, controller.Request{URL: request})
	if err != nil {
		return fmt.Errorf("resolve request: %w", err)
	}

	if vm.ActiveView != model.AspectPresentationRequest {
		return fmt.Errorf("unexpected view after request: %s", vm.ActiveView)
	}

	vm, err = s.dispatch(ctx, controller.PresentationApproved{})
	if err != nil {
		return fmt.Errorf("submit presentation: %w", err)
	}

	return printView(cmd, vm.Presentation)
}
