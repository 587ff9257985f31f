/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"github.com/spf13/cobra"
	cmdutils "github.com/trustbloc/cmdutil-go/pkg/utils/cmd"

	"github.com/trustbloc/wallet/cmd/common"
)

const (
	commonEnvVarUsageText = "Alternatively, this can be set with the following environment variable: "

	hostURLFlagName      = "host-url"
	hostURLFlagShorthand = "u"
	hostURLFlagUsage     = "URL to run the wallet instance on. Format: HostName:Port. " +
		commonEnvVarUsageText + hostURLEnvKey
	hostURLEnvKey = "WALLET_HOST_URL"

	metricsHostURLFlagName  = "metrics-host-url"
	metricsHostURLEnvKey    = "WALLET_METRICS_HOST_URL"
	metricsHostURLFlagUsage = "URL that exposes the prometheus metrics endpoint. Format: HostName:Port. " +
		"Metrics are disabled when not set. " + commonEnvVarUsageText + metricsHostURLEnvKey
)

type startupParameters struct {
	hostURL        string
	metricsHostURL string
	wallet         *common.WalletParameters
}

func getStartupParameters(cmd *cobra.Command) (*startupParameters, error) {
	hostURL, err := cmdutils.GetUserSetVarFromString(cmd, hostURLFlagName, hostURLEnvKey, false)
	if err != nil {
		return nil, err
	}

	walletParams, err := common.WalletParams(cmd)
	if err != nil {
		return nil, err
	}

	return &startupParameters{
		hostURL:        hostURL,
		metricsHostURL: cmdutils.GetUserSetOptionalVarFromString(cmd, metricsHostURLFlagName, metricsHostURLEnvKey),
		wallet:         walletParams,
	}, nil
}

func createFlags(startCmd *cobra.Command) {
	common.WalletFlags(startCmd)

	startCmd.Flags().StringP(hostURLFlagName, hostURLFlagShorthand, "", hostURLFlagUsage)
	startCmd.Flags().StringP(metricsHostURLFlagName, "", "", metricsHostURLFlagUsage)
}
