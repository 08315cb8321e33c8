package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/clawline/internal/transport"
	"github.com/user/clawline/internal/types"
)

func init() {
	rootCmd.AddCommand(healthCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health [server-id]",
	Short: "Probe gateway liveness over the request-form endpoint",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		stores := openStores(cfg)

		servers, err := stores.Servers.List()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			server, err := stores.Servers.Get(types.ServerID(args[0]))
			if err != nil {
				return err
			}
			servers = []*types.Server{server}
		}
		if len(servers) == 0 {
			fmt.Println("No servers configured.")
			return nil
		}

		client := transport.NewClient()
		policy := transport.RetryPolicy{
			Timeout:    cfg.TransportTimeout(),
			MaxRetries: cfg.Transport.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		for _, server := range servers {
			status, err := client.Health(ctx, server.Endpoint, policy)
			if err != nil {
				fmt.Printf("%s (%s): unreachable: %v\n", server.Name, server.ID, err)
				continue
			}
			fmt.Printf("%s (%s): %s\n", server.Name, server.ID, status)
		}
		return nil
	},
}
