package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/pkoukk/tiktoken-go"
	"github.com/spf13/cobra"

	"github.com/user/clawline/internal/types"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd, sessionAliasCmd, sessionFavoriteCmd, sessionStatsCmd)

	sessionFavoriteCmd.Flags().Bool("remove", false, "remove instead of add")
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)
		r, err := newRouter(cfg, stores)
		if err != nil {
			return err
		}

		// Sessions are known through aliases, favorites and triggers.
		keys := make(map[types.SessionKey]bool)
		if aliases, err := stores.Aliases.All(); err == nil {
			for k := range aliases {
				keys[k] = true
			}
		}
		if favorites, err := stores.Favorites.List(); err == nil {
			for _, k := range favorites {
				keys[k] = true
			}
		}
		if triggers, err := stores.Triggers.List(); err == nil {
			for _, t := range triggers {
				keys[t.SessionKey] = true
			}
		}

		if len(keys) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		sorted := make([]types.SessionKey, 0, len(keys))
		for k := range keys {
			sorted = append(sorted, k)
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME")
		for _, k := range sorted {
			fmt.Fprintf(w, "%s\t%s\n", k, r.ResolveAlias(k))
		}
		return w.Flush()
	},
}

var sessionAliasCmd = &cobra.Command{
	Use:   "alias <session-key> [name]",
	Short: "Set or clear a session's display name",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		key := types.SessionKey(args[0])
		if _, err := types.ParseSessionKey(key); err != nil {
			return err
		}

		alias := ""
		if len(args) == 2 {
			alias = args[1]
		}
		if err := stores.Aliases.Set(key, alias); err != nil {
			return err
		}
		if alias == "" {
			fmt.Printf("Cleared alias for %s\n", key)
		} else {
			fmt.Printf("Aliased %s as %q\n", key, alias)
		}
		return nil
	},
}

var sessionFavoriteCmd = &cobra.Command{
	Use:   "favorite <session-key>",
	Short: "Add or remove a favorite session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		key := types.SessionKey(args[0])
		if _, err := types.ParseSessionKey(key); err != nil {
			return err
		}

		remove, _ := cmd.Flags().GetBool("remove")
		if remove {
			if err := stores.Favorites.Remove(key); err != nil {
				return err
			}
			fmt.Printf("Removed favorite %s\n", key)
			return nil
		}
		if err := stores.Favorites.Add(key); err != nil {
			return err
		}
		fmt.Printf("Favorited %s\n", key)
		return nil
	},
}

var sessionStatsCmd = &cobra.Command{
	Use:   "stats <session-key>",
	Short: "Show transcript stats for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stores := openStores(cfg)

		key := types.SessionKey(args[0])
		if _, err := types.ParseSessionKey(key); err != nil {
			return err
		}

		entries, err := stores.Transcripts.Read(key)
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No transcript for this session.")
			return nil
		}

		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return fmt.Errorf("load token encoding: %w", err)
		}

		var userMsgs, agentMsgs, tokens int
		for _, e := range entries {
			switch e.Role {
			case "user":
				userMsgs++
			case "agent":
				agentMsgs++
			}
			tokens += len(enc.Encode(e.Text, nil, nil))
		}

		fmt.Printf("Messages: %d (%d user, %d agent)\n", len(entries), userMsgs, agentMsgs)
		fmt.Printf("Estimated tokens: %d\n", tokens)
		fmt.Printf("First message: %s\n", entries[0].At.Format("2006-01-02 15:04:05"))
		fmt.Printf("Last message:  %s\n", entries[len(entries)-1].At.Format("2006-01-02 15:04:05"))
		return nil
	},
}
