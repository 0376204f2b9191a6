package main

import (
	"encoding/base64"
	"fmt"

	"github.com/google/wire"
	"github.com/helionpay/custody-wallet/store/activity"
	"github.com/helionpay/custody-wallet/store/db"
	"github.com/helionpay/custody-wallet/store/keyvault"
	"github.com/helionpay/custody-wallet/store/reconcile"
	"github.com/helionpay/custody-wallet/store/wallet"
	"github.com/spf13/viper"
	"github.com/tsenart/nap"
)

var storeSet = wire.NewSet(
	provideDB,
	provideVault,
	wallet.New,
	activity.New,
	reconcile.New,
)

func provideDB(v *viper.Viper) (*nap.DB, func(), error) {
	v.SetDefault("db.driver", "postgres")

	driver := v.GetString("db.driver")
	dsn := v.GetString("db.dsn")

	for _, replica := range v.GetStringSlice("db.replicas") {
		dsn += ";" + replica
	}

	conn, err := nap.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(conn.Master()); err != nil {
		return nil, nil, err
	}

	return conn, func() { _ = conn.Close() }, nil
}

func provideVault(v *viper.Viper, conn *nap.DB) (*keyvault.Vault, error) {
	masterKey, err := base64.StdEncoding.DecodeString(v.GetString("vault.master_key"))
	if err != nil {
		return nil, fmt.Errorf("decode vault master key: %w", err)
	}

	return keyvault.New(conn, masterKey)
}
