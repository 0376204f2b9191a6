package main

import "github.com/helionpay/custody-wallet/cmd/custody-cli/cmd"

func main() {
	cmd.Execute()
}
