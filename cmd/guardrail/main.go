// Command guardrail is a demo CLI around the streamguard library: it is
// not part of the library's contract, only an ambient harness showing
// how an Engine is wired up, fed, and observed from the outside.
//
// Usage:
//
//	guardrail scan < input.txt
//	guardrail scan --config rules.yaml --chunk-size 16 < input.txt
//	guardrail bench --streams 8 --chunks 200
//	guardrail watch rules.yaml < input.txt
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "guardrail",
		Short:         "Stream text through a streamguard Engine and print verdicts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: parseLogLevel(logLevel),
			})))
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a rule-set YAML file (defaults to the embedded baseline)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn, or error")

	root.AddCommand(scanCmd())
	root.AddCommand(benchCmd())
	root.AddCommand(watchCmd())
	return root
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
