package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/streamguardhq/streamguard"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func scanCmd() *cobra.Command {
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Feed stdin through an Engine chunk by chunk and print each verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			return runScan(cmd.Context(), engine, os.Stdin, os.Stdout, chunkSize)
		},
	}
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 32, "bytes read per simulated stream chunk")
	return cmd
}

func runScan(ctx context.Context, engine *streamguard.Engine, in *os.File, out *os.File, chunkSize int) error {
	color := isatty.IsTerminal(out.Fd())
	reader := bufio.NewReader(in)
	buf := make([]byte, chunkSize)

	for {
		n, err := reader.Read(buf)
		if n > 0 {
			decision := engine.FeedContext(ctx, string(buf[:n]))
			printDecision(out, buf[:n], decision, color)
			if decision.IsSuppress() {
				break
			}
		}
		if err != nil {
			break
		}
	}
	return nil
}

func printDecision(out *os.File, chunk []byte, d streamguard.Decision, color bool) {
	switch {
	case d.IsSuppress():
		if color {
			fmt.Fprintf(out, "%sSUPPRESS%s %q: %s\n", ansiRed, ansiReset, string(chunk), d.Reason())
		} else {
			fmt.Fprintf(out, "SUPPRESS %q: %s\n", string(chunk), d.Reason())
		}
	case d.IsSubstitute():
		if color {
			fmt.Fprintf(out, "%sSUBSTITUTE%s %q -> %q\n", ansiYellow, ansiReset, string(chunk), d.Replacement())
		} else {
			fmt.Fprintf(out, "SUBSTITUTE %q -> %q\n", string(chunk), d.Replacement())
		}
	default:
		fmt.Fprintf(out, "permit %q\n", string(chunk))
	}
}
