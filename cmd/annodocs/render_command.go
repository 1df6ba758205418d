package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"annodocs/internal/store"
	"annodocs/internal/watch"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var ifChanged bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Parse, render and publish the document once",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.useDocument(args)
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cmd)
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run journal: %w", err)
			}
			defer st.Close()

			w, err := watch.New(cfg, st, logger)
			if err != nil {
				return err
			}
			var outcome watch.Outcome
			if ifChanged {
				outcome, err = w.Poll(cmd.Context())
			} else {
				outcome, err = w.Refresh(cmd.Context())
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, outcome)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if !outcome.Changed {
				fmt.Fprintln(out, renderStatusLine("Document", statusInfo, "unchanged since the last run; nothing published", colorize))
				return nil
			}
			fmt.Fprintln(out, renderStatusLine("Transcript", transcriptStatusKind(outcome.Result.Status), outcome.Result.Status.String(), colorize))
			fmt.Fprintln(out, renderStatusLine("Diagnostics", diagnosticsKind(outcome.Result.Diagnostics), diagnosticsSummary(outcome.Result.Diagnostics), colorize))
			fmt.Fprintln(out, renderStatusLine("Output", statusOK, cfg.Paths.OutputDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Files", statusInfo, strings.Join(outcome.Manifest.Files, ", "), colorize))
			if len(outcome.Manifest.RemovedEmbeds) > 0 {
				fmt.Fprintln(out, renderStatusLine("Removed embeds", statusWarn, strings.Join(outcome.Manifest.RemovedEmbeds, ", "), colorize))
			}
			if outcome.Run != nil {
				fmt.Fprintln(out, renderStatusLine("Run", statusInfo, outcome.Run.ID, colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ifChanged, "if-changed", false, "Skip publishing when the document matches the last recorded run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the outcome as JSON")
	return cmd
}
