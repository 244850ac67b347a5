package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AO-Metaplayer/gasestimator/internal/config"
	"github.com/AO-Metaplayer/gasestimator/pkg/entrypoint"
	"github.com/AO-Metaplayer/gasestimator/pkg/evmprovider"
	"github.com/AO-Metaplayer/gasestimator/pkg/rpctypes"
)

func newEstimateCmd() *cobra.Command {
	var opFile string
	var useV07 bool

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Run a single gas estimate against a JSON UserOperationOptionalGas file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(opFile, useV07)
		},
	}
	cmd.Flags().StringVar(&opFile, "op", "", "path to a JSON UserOperationOptionalGas file")
	cmd.Flags().BoolVar(&useV07, "v07", false, "target EntryPoint v0.7 instead of v0.6")
	_ = cmd.MarkFlagRequired("op")

	return cmd
}

func runEstimate(opFile string, useV07 bool) error {
	raw, err := os.ReadFile(opFile)
	if err != nil {
		return err
	}

	var opJSON rpctypes.UserOperationOptionalGasJSON
	if err := json.Unmarshal(raw, &opJSON); err != nil {
		return fmt.Errorf("invalid user operation JSON: %w", err)
	}

	conf := config.GetValues()
	rpcClient, err := rpc.Dial(conf.EthClientUrl)
	if err != nil {
		return err
	}
	provider := evmprovider.New(rpcClient)

	epAddr := conf.EntryPointV06
	if useV07 {
		epAddr = conf.EntryPointV07
	}
	estimator := buildEstimator(provider, entrypoint.New(provider, epAddr), conf.ChainConfig(), conf.Settings())

	result, err := estimator.EstimateOpGas(context.Background(), opJSON.ToOptionalGas())
	if err != nil {
		return err
	}

	printer := message.NewPrinter(language.English)
	printer.Printf("preVerificationGas:   %d\n", result.PreVerificationGas.Int64())
	printer.Printf("verificationGasLimit: %d\n", result.VerificationGasLimit.Int64())
	printer.Printf("callGasLimit:         %d\n", result.CallGasLimit.Int64())
	return nil
}
