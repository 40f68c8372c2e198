package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tickrflow",
	Short: "A CLI for managing the Tickrflow backend services",
	Long:  `Tickrflow is a stock market web application backend: watchlists, market news, AI digests and transactional email...`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
