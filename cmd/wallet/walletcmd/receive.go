/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package walletcmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	cmdutils "github.com/trustbloc/cmdutil-go/pkg/utils/cmd"

	"github.com/trustbloc/wallet/cmd/common"
	"github.com/trustbloc/wallet/pkg/controller"
	"github.com/trustbloc/wallet/pkg/model"
)

const (
	offerFlagName  = "offer"
	offerEnvKey    = "WALLET_OFFER"
	offerFlagUsage = "Credential offer: an openid-credential-offer:// URI or its query string. " +
		commonEnvVarUsageText + offerEnvKey

	pinFlagName  = "pin"
	pinEnvKey    = "WALLET_PIN"
	pinFlagUsage = "Transaction code sent by the issuer out of band. Required when the offer asks for one. " +
		commonEnvVarUsageText + pinEnvKey
)

// ErrPINRequired is returned when the offer asks for a transaction code and none was given.
var ErrPINRequired = errors.New("offer requires a transaction code, set --" + pinFlagName)

// GetReceiveCmd returns the command accepting a credential offer.
func GetReceiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Receive an offered credential",
		Long:  "Accept a pre-authorized credential offer and store the issued credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			offer, err := cmdutils.GetUserSetVarFromString(cmd, offerFlagName, offerEnvKey, false)
			if err != nil {
				return err
			}

			pin := cmdutils.GetUserSetOptionalVarFromString(cmd, pinFlagName, pinEnvKey)

			s, err := openSession(cmd)
			if err != nil {
				return err
			}

			defer s.Close()

			return receive(cmd, s, offer, pin)
		},
	}

	common.WalletFlags(cmd)

	cmd.Flags().StringP(offerFlagName, "", "", offerFlagUsage)
	cmd.Flags().StringP(pinFlagName, "", "", pinFlagUsage)

	return cmd
}

func receive(cmd *cobra.Command, s *session, offer, pin string) error {
	ctx := commandContext(cmd)

	if _, err := s.dispatch(ctx, controller.Ready{}); err != nil {
		return err
	}

	vm, err := s.dispatch(ctx, controller.Offer{Encoded: offer})
	if err != nil {
		return fmt.Errorf("resolve offer: %w", err)
	}

	if vm.ActiveView != model.AspectIssuanceOffer {
		return fmt.Errorf("unexpected view after offer: %s", vm.ActiveView)
	}

	vm, err = s.dispatch(ctx, controller.OfferAccepted{})
	if err != nil {
		return fmt.Errorf("accept offer: %w", err)
	}

	if vm.ActiveView == model.AspectIssuancePin {
		if pin == "" {
			s.wallet.Dispatch(ctx, controller.IssuanceCancelled{})

			return ErrPINRequired
		}

		vm, err = s.dispatch(ctx, controller.PINEntered{PIN: pin})
		if err != nil {
			return fmt.Errorf("redeem offer: %w", err)
		}
	}

	return printView(cmd, vm.Credential)
}
