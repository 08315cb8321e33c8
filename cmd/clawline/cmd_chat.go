package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/clawline/internal/supervisor"
	"github.com/user/clawline/internal/types"
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("message", "m", "", "message to send (defaults to a staged trigger message)")
	chatCmd.Flags().String("server", "", "server id (defaults to the current selection)")
}

var chatCmd = &cobra.Command{
	Use:   "chat <session-name>",
	Short: "Send one turn on a session and stream the answer",
	Args:  cobra.ExactArgs(1),
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)
	stores := openStores(cfg)
	r, err := newRouter(cfg, stores)
	if err != nil {
		return err
	}

	serverFlag, _ := cmd.Flags().GetString("server")
	message, _ := cmd.Flags().GetString("message")

	serverID := types.ServerID(serverFlag)
	if serverID == "" {
		current, _ := r.Store().Current()
		serverID = current
	}
	if serverID == "" {
		return fmt.Errorf("no server selected; pass --server or run a trigger first")
	}

	server, err := stores.Servers.Get(serverID)
	if err != nil {
		return err
	}

	// A staged trigger message takes over when no -m was given. Taking
	// it clears the slot, so a rerun never resends it.
	if message == "" {
		if staged, ok := r.Store().TakePendingMessage(); ok {
			message = staged
		}
	}
	if message == "" {
		return fmt.Errorf("nothing to send; pass -m or stage a message with a trigger")
	}

	key := types.NewSessionKey(server.Provider, server.ID, args[0])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	manager := supervisor.NewManager(supervisorConfig(cfg))
	defer manager.CloseAll()

	sup := manager.Connect(ctx, server)
	sup.OnStatus(func(id types.ServerID, st supervisor.Status) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", id, st)
	})

	turn, err := sup.SubmitTurn(key, message)
	if err != nil {
		return err
	}
	if err := stores.Transcripts.Append(key, "user", message); err != nil {
		return err
	}

	// Stream visible text as it grows; rewrite the line on each update.
	var lastLen int
	for {
		select {
		case visible, ok := <-turn.Updates():
			if !ok {
				// Terminal state reached; drain below.
				goto done
			}
			fmt.Print("\r" + visible + strings.Repeat(" ", max(0, lastLen-len(visible))))
			lastLen = len(visible)
		case <-sigChan:
			turn.Cancel()
		case <-turn.Done():
			goto done
		}
	}

done:
	<-turn.Done()

	if err := turn.Err(); err != nil {
		fmt.Println()
		turn.Ack()
		return fmt.Errorf("turn failed: %w", err)
	}

	final := turn.VisibleText()
	fmt.Print("\r" + final + strings.Repeat(" ", max(0, lastLen-len(final))))
	fmt.Println()
	return stores.Transcripts.Append(key, "agent", final)
}
