package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/clawline/internal/types"
)

func init() {
	rootCmd.AddCommand(triggerCmd)
	triggerCmd.AddCommand(triggerAddCmd, triggerListCmd, triggerRemoveCmd, triggerRunCmd)

	triggerAddCmd.Flags().String("server", "", "target server id")
	triggerAddCmd.Flags().String("session", "", "target session key (provider:serverID:name)")
	triggerAddCmd.Flags().String("message", "", "canned message to stage")
	triggerAddCmd.MarkFlagRequired("server")
	triggerAddCmd.MarkFlagRequired("session")
	triggerAddCmd.MarkFlagRequired("message")
}

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Manage trigger shortcuts",
}

var triggerAddCmd = &cobra.Command{
	Use:   "add <slug>",
	Short: "Create or replace a trigger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)
		r, err := newRouter(cfg, stores)
		if err != nil {
			return err
		}

		serverID, _ := cmd.Flags().GetString("server")
		session, _ := cmd.Flags().GetString("session")
		message, _ := cmd.Flags().GetString("message")

		if err := r.UpsertTrigger(&types.Trigger{
			Slug:       args[0],
			ServerID:   types.ServerID(serverID),
			SessionKey: types.SessionKey(session),
			Message:    message,
		}); err != nil {
			return fmt.Errorf("upsert trigger: %w", err)
		}
		fmt.Printf("Saved trigger %s\n", args[0])
		return nil
	},
}

var triggerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List triggers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)
		r, err := newRouter(cfg, stores)
		if err != nil {
			return err
		}

		triggers, err := r.ListTriggers()
		if err != nil {
			return fmt.Errorf("list triggers: %w", err)
		}
		if len(triggers) == 0 {
			fmt.Println("No triggers configured.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tSESSION\tMESSAGE")
		for _, t := range triggers {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.Slug, r.ResolveAlias(t.SessionKey), t.Message)
		}
		return w.Flush()
	},
}

var triggerRemoveCmd = &cobra.Command{
	Use:   "rm <slug>",
	Short: "Delete a trigger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)
		r, err := newRouter(cfg, stores)
		if err != nil {
			return err
		}
		if err := r.DeleteTrigger(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted trigger %s\n", args[0])
		return nil
	},
}

var triggerRunCmd = &cobra.Command{
	Use:   "run <slug>",
	Short: "Execute a trigger: switch the current session and stage its message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		stores := openStores(cfg)
		r, err := newRouter(cfg, stores)
		if err != nil {
			return err
		}

		if err := r.ExecuteTrigger(args[0]); err != nil {
			return err
		}

		server, session := r.Store().Current()
		if msg, ok := r.Store().TakePendingMessage(); ok {
			fmt.Printf("Switched to %s on server %s\n", r.ResolveAlias(session), server)
			fmt.Printf("Staged message: %s\n", msg)
		} else {
			fmt.Printf("Trigger %s not found, nothing changed.\n", args[0])
		}
		return nil
	},
}
