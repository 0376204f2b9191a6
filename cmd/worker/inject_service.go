package main

import (
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/wire"
	"github.com/helionpay/custody-wallet/service/chain"
	"github.com/spf13/viper"
)

var serviceSet = wire.NewSet(
	provideChainConfig,
	chain.New,
)

func provideChainConfig(v *viper.Viper) chain.Config {
	v.SetDefault("chain.endpoint", rpc.DevNet_RPC)
	v.SetDefault("chain.commitment", string(rpc.CommitmentConfirmed))
	v.SetDefault("chain.confirm_timeout", "60s")

	timeout, err := time.ParseDuration(v.GetString("chain.confirm_timeout"))
	if err != nil {
		timeout = 60 * time.Second
	}

	return chain.Config{
		Endpoint:       v.GetString("chain.endpoint"),
		Commitment:     rpc.CommitmentType(v.GetString("chain.commitment")),
		ConfirmTimeout: timeout,
	}
}
