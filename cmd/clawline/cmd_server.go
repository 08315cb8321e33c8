package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/clawline/internal/types"
)

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.AddCommand(serverAddCmd, serverListCmd, serverRemoveCmd)

	serverAddCmd.Flags().String("name", "", "display name")
	serverAddCmd.Flags().String("endpoint", "", "gateway endpoint (bare host defaults to wss)")
	serverAddCmd.Flags().String("provider", string(types.ProviderGateway), "provider kind: gateway|local|vendor|echo|device")
	serverAddCmd.Flags().String("token", "", "auth token (never exported)")
	serverAddCmd.Flags().String("model", "", "model name")
	serverAddCmd.Flags().String("client-id", "", "client identifier")
	serverAddCmd.MarkFlagRequired("name")
	serverAddCmd.MarkFlagRequired("endpoint")
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage gateway servers",
}

var serverAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		name, _ := cmd.Flags().GetString("name")
		ep, _ := cmd.Flags().GetString("endpoint")
		provider, _ := cmd.Flags().GetString("provider")
		token, _ := cmd.Flags().GetString("token")
		model, _ := cmd.Flags().GetString("model")
		clientID, _ := cmd.Flags().GetString("client-id")

		server := &types.Server{
			Name:     name,
			Endpoint: ep,
			Provider: types.ProviderKind(provider),
			Token:    token,
			Model:    model,
			ClientID: clientID,
		}
		if err := stores.Servers.Add(server); err != nil {
			return fmt.Errorf("add server: %w", err)
		}
		fmt.Printf("Added server %s (%s)\n", server.Name, server.ID)
		return nil
	},
}

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		servers, err := stores.Servers.List()
		if err != nil {
			return fmt.Errorf("list servers: %w", err)
		}
		if len(servers) == 0 {
			fmt.Println("No servers configured.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPROVIDER\tENDPOINT\tCREATED")
		for _, s := range servers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				s.ID, s.Name, s.Provider, s.Endpoint,
				s.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var serverRemoveCmd = &cobra.Command{
	Use:   "remove <server-id>",
	Short: "Remove a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		if err := stores.Servers.Remove(types.ServerID(args[0])); err != nil {
			return err
		}
		fmt.Printf("Removed server %s\n", args[0])
		return nil
	},
}
