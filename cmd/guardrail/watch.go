package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	sgconfig "github.com/streamguardhq/streamguard/config"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <rules.yaml>",
		Short: "Watch a rule-set file for changes, feeding stdin through the live Engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			logger := slog.Default()

			w, err := sgconfig.NewWatcher(cmd.Context(), path, logger)
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer w.Close()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := scanner.Text()
				decision := w.Engine().FeedContext(cmd.Context(), line)
				printDecision(os.Stdout, []byte(line), decision, false)
			}
			return scanner.Err()
		},
	}
}
