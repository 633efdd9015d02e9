package main

import (
	"os"

	"github.com/rb-rbloxk/ClubLiquidez-1/cmd/clubliq/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
