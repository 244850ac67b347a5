package main

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/spf13/cobra"

	"github.com/AO-Metaplayer/gasestimator/internal/config"
	"github.com/AO-Metaplayer/gasestimator/internal/httpapi"
	"github.com/AO-Metaplayer/gasestimator/internal/logger"
	"github.com/AO-Metaplayer/gasestimator/internal/o11y"
	"github.com/AO-Metaplayer/gasestimator/pkg/entrypoint"
	"github.com/AO-Metaplayer/gasestimator/pkg/evmprovider"
	"github.com/AO-Metaplayer/gasestimator/pkg/gas"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the estimator's HTTP front door",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	conf := config.GetValues()
	log := logger.New(conf.DebugMode)

	ctx := context.Background()

	rpcClient, err := rpc.Dial(conf.EthClientUrl)
	if err != nil {
		return err
	}
	eth := ethclient.NewClient(rpcClient)

	chain, err := eth.ChainID(ctx)
	if err != nil {
		return err
	}

	if o11y.IsEnabled(conf.OTELServiceName) {
		opts := &o11y.Opts{
			ServiceName:     conf.OTELServiceName,
			CollectorHeader: conf.OTELCollectorHeaders,
			CollectorUrl:    conf.OTELCollectorUrl,
			InsecureMode:    conf.OTELInsecureMode,
			ChainID:         chain.Uint64(),
		}
		defer o11y.InitTracer(opts)()
		defer o11y.InitMetrics(opts)()
	}

	provider := evmprovider.New(rpcClient)
	settings := conf.Settings()
	chainCfg := conf.ChainConfig()

	estimators := &httpapi.Estimators{
		V06: buildEstimator(provider, entrypoint.New(provider, conf.EntryPointV06), chainCfg, settings),
		V07: buildEstimator(provider, entrypoint.New(provider, conf.EntryPointV07), chainCfg, settings),
	}

	server := httpapi.New(conf.GinMode, conf.OTELServiceName, estimators, log)
	log.Info("starting gas estimator", "port", conf.Port)
	if err := server.Run(conf.Port); err != nil {
		log.Error(err, "server exited")
		return err
	}
	return nil
}

func buildEstimator(provider *evmprovider.Provider, ep *entrypoint.Client, chainCfg gas.ChainConfig, settings gas.Settings) *gas.Estimator {
	return gas.New(provider, ep, chainCfg, settings)
}
