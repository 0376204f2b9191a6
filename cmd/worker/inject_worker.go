package main

import (
	"time"

	"github.com/google/wire"
	"github.com/helionpay/custody-wallet/worker/reconciler"
	"github.com/helionpay/custody-wallet/worker/syncer"
	"github.com/spf13/viper"
)

var workerSet = wire.NewSet(
	provideSyncerConfig,
	syncer.New,
	reconciler.New,
)

func provideSyncerConfig(v *viper.Viper) syncer.Config {
	v.SetDefault("syncer.window", "5m")

	window, err := time.ParseDuration(v.GetString("syncer.window"))
	if err != nil {
		window = 5 * time.Minute
	}

	return syncer.Config{Window: window}
}
