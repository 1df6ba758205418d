package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"annodocs/internal/logs"
)

const followWait = 30 * time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var followFlag bool
	var filter logs.Filter
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the watcher log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogFile()
			out := cmd.OutOrStdout()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			chunk, err := logs.Tail(runCtx, path, logs.TailOptions{Offset: -1, Limit: lines})
			if err != nil {
				return err
			}
			if err := printLogEntries(out, logs.Entries(chunk.Lines, filter), jsonOutput); err != nil {
				return err
			}
			if !followFlag {
				return nil
			}
			offset := chunk.Offset
			for {
				chunk, err := logs.Tail(runCtx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: followWait})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				if err != nil {
					return err
				}
				offset = chunk.Offset
				if err := printLogEntries(out, logs.Entries(chunk.Lines, filter), jsonOutput); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to read")
	cmd.Flags().BoolVarP(&followFlag, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&filter.RunID, "run", "", "Only show entries for one run")
	cmd.Flags().StringVar(&filter.Component, "component", "", "Only show entries from one component")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&filter.Alerts, "alerts", false, "Only show entries flagged as alerts")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON lines")
	return cmd
}

func printLogEntries(out io.Writer, entries []logs.Entry, asJSON bool) error {
	for _, e := range entries {
		if asJSON {
			if err := writeJSONLine(out, e); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(out, formatLogEntry(e))
	}
	return nil
}

func formatLogEntry(e logs.Entry) string {
	if e.Raw != "" {
		return e.Raw
	}
	parts := make([]string, 0, 5)
	if !e.Time.IsZero() {
		parts = append(parts, e.Time.Local().Format(historyTimeLayout))
	}
	parts = append(parts, fmt.Sprintf("%-5s", strings.ToUpper(e.Level)))
	if e.Component != "" {
		parts = append(parts, "["+e.Component+"]")
	}
	parts = append(parts, e.Message)
	if e.RunID != "" {
		parts = append(parts, "run="+e.RunID)
	}
	return strings.Join(parts, " ")
}
