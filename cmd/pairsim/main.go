package main

import (
	"context"
	"os"

	"github.com/astroport-fi/astroport-core-sub001/cmd/pairsim/cmd"
)

func main() {
	if err := cmd.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
