// Command gasestimator runs the UserOperation gas estimator, either as a one-shot CLI calculation
// or as a small HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "gasestimator",
		Short: "Estimate ERC-4337 UserOperation gas limits against a live EVM node",
	}
	root.AddCommand(newEstimateCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
