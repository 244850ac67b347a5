package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"github.com/AO-Metaplayer/gasestimator/pkg/gas"
)

// Values holds every environment-driven setting the estimator and its thin HTTP/CLI front door
// need. There is no mempool, reputation, or searcher configuration here: those concerns belong to
// a full bundler, not a gas estimator.
type Values struct {
	EthClientUrl            string
	Port                    int
	EntryPointV06           common.Address
	EntryPointV07           common.Address
	ChainID                 uint64
	MaxVerificationGas      uint64
	MaxCallGas              uint64
	MaxSimulateHandleOpsGas uint64

	// Observability variables.
	OTELServiceName      string
	OTELCollectorHeaders map[string]string
	OTELCollectorUrl     string
	OTELInsecureMode     bool

	// Rollup related variables.
	IsOpStackNetwork  bool
	IsArbStackNetwork bool

	// Undocumented variables.
	DebugMode bool
	GinMode   string
}

func envKeyValStringToMap(s string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(s, "&") {
		kv := strings.Split(pair, "=")
		if len(kv) != 2 {
			break
		}
		out[kv[0]] = kv[1]
	}
	return out
}

func variableNotSetOrIsNil(env string) bool {
	return !viper.IsSet(env) || viper.GetString(env) == ""
}

// GetValues returns estimator config read in from env vars and an optional .env file, following
// the same viper defaults-then-bind-then-validate shape the rest of this codebase family uses.
func GetValues() *Values {
	viper.SetDefault("gasestimator_port", 4337)
	viper.SetDefault("gasestimator_chain_id", 1)
	viper.SetDefault("gasestimator_max_verification_gas", 6_000_000)
	viper.SetDefault("gasestimator_max_call_gas", 18_000_000)
	viper.SetDefault("gasestimator_max_simulate_handle_ops_gas", 20_000_000)
	viper.SetDefault("gasestimator_entry_point_v06", "0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")
	viper.SetDefault("gasestimator_entry_point_v07", "0x0000000071727De22E5E9d8BAf0edAc6f37da032")
	viper.SetDefault("gasestimator_otel_insecure_mode", false)
	viper.SetDefault("gasestimator_is_op_stack_network", false)
	viper.SetDefault("gasestimator_is_arb_stack_network", false)
	viper.SetDefault("gasestimator_debug_mode", false)
	viper.SetDefault("gasestimator_gin_mode", gin.ReleaseMode)

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	_ = viper.BindEnv("gasestimator_eth_client_url")
	_ = viper.BindEnv("gasestimator_port")
	_ = viper.BindEnv("gasestimator_chain_id")
	_ = viper.BindEnv("gasestimator_max_verification_gas")
	_ = viper.BindEnv("gasestimator_max_call_gas")
	_ = viper.BindEnv("gasestimator_max_simulate_handle_ops_gas")
	_ = viper.BindEnv("gasestimator_entry_point_v06")
	_ = viper.BindEnv("gasestimator_entry_point_v07")
	_ = viper.BindEnv("gasestimator_otel_service_name")
	_ = viper.BindEnv("gasestimator_otel_collector_headers")
	_ = viper.BindEnv("gasestimator_otel_collector_url")
	_ = viper.BindEnv("gasestimator_otel_insecure_mode")
	_ = viper.BindEnv("gasestimator_is_op_stack_network")
	_ = viper.BindEnv("gasestimator_is_arb_stack_network")
	_ = viper.BindEnv("gasestimator_debug_mode")
	_ = viper.BindEnv("gasestimator_gin_mode")

	if variableNotSetOrIsNil("gasestimator_eth_client_url") {
		panic("Fatal config error: gasestimator_eth_client_url not set")
	}

	if viper.IsSet("gasestimator_otel_service_name") &&
		variableNotSetOrIsNil("gasestimator_otel_collector_url") {
		panic("Fatal config error: gasestimator_otel_service_name is set without a collector URL")
	}

	isOpStackNetwork := viper.GetBool("gasestimator_is_op_stack_network")
	isArbStackNetwork := viper.GetBool("gasestimator_is_arb_stack_network")
	if isOpStackNetwork && isArbStackNetwork {
		panic("Fatal config error: a chain cannot be both an OP-stack and an Arbitrum-stack network")
	}

	return &Values{
		EthClientUrl:            viper.GetString("gasestimator_eth_client_url"),
		Port:                    viper.GetInt("gasestimator_port"),
		EntryPointV06:           common.HexToAddress(viper.GetString("gasestimator_entry_point_v06")),
		EntryPointV07:           common.HexToAddress(viper.GetString("gasestimator_entry_point_v07")),
		ChainID:                 viper.GetUint64("gasestimator_chain_id"),
		MaxVerificationGas:      viper.GetUint64("gasestimator_max_verification_gas"),
		MaxCallGas:              viper.GetUint64("gasestimator_max_call_gas"),
		MaxSimulateHandleOpsGas: viper.GetUint64("gasestimator_max_simulate_handle_ops_gas"),
		OTELServiceName:         viper.GetString("gasestimator_otel_service_name"),
		OTELCollectorHeaders:    envKeyValStringToMap(viper.GetString("gasestimator_otel_collector_headers")),
		OTELCollectorUrl:        viper.GetString("gasestimator_otel_collector_url"),
		OTELInsecureMode:        viper.GetBool("gasestimator_otel_insecure_mode"),
		IsOpStackNetwork:        isOpStackNetwork,
		IsArbStackNetwork:       isArbStackNetwork,
		DebugMode:               viper.GetBool("gasestimator_debug_mode"),
		GinMode:                 viper.GetString("gasestimator_gin_mode"),
	}
}

// Settings adapts Values into the pkg/gas.Settings the estimator's search components need.
func (v *Values) Settings() gas.Settings {
	return gas.Settings{
		MaxVerificationGas:      v.MaxVerificationGas,
		MaxCallGas:              v.MaxCallGas,
		MaxSimulateHandleOpsGas: v.MaxSimulateHandleOpsGas,
	}
}

// ChainConfig adapts Values into the pkg/gas.ChainConfig the pre-verification gas calculator
// needs, wiring in the configured L1 surcharge mode.
func (v *Values) ChainConfig() gas.ChainConfig {
	cfg := gas.DefaultMainnetChainConfig(v.ChainID)
	switch {
	case v.IsArbStackNetwork:
		cfg = cfg.WithL1Mode(gas.L1ModeArbitrum)
	case v.IsOpStackNetwork:
		cfg = cfg.WithL1Mode(gas.L1ModeOptimism)
	}
	return cfg
}
