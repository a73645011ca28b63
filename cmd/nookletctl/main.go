package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nooklet/nooklet/client"
)

var (
	apiFlag   string
	tokenFlag string
	rootCmd   = &cobra.Command{
		Use:   "nookletctl",
		Short: "CLI client for the nooklet service REST API",
	}
)

// newClient builds an SDK client from the persistent flags.
func newClient() *client.Client {
	opts := []client.Option{client.WithTimeout(30 * time.Second)}
	if tokenFlag != "" {
		opts = append(opts, client.WithToken(tokenFlag))
	}
	return client.New(apiFlag, opts...)
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Nooklet service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "", "Session token from 'nookletctl login'")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
