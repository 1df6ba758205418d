package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"annodocs/internal/store"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded parse runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run journal: %w", err)
			}
			defer st.Close()

			if runID != "" {
				annotations, err := st.RunAnnotations(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, annotations)
				}
				printRunAnnotations(cmd, annotations)
				return nil
			}

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}
			printRuns(cmd, runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show the annotations recorded by one run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	return cmd
}

func printRuns(cmd *cobra.Command, runs []*store.Run) {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.FinishedAt.Local().Format(historyTimeLayout),
			run.Status.String(),
			strconv.Itoa(run.Diagnostics.TranscriptBlocks),
			strconv.Itoa(run.Diagnostics.Annotations),
			yesNo(run.Diagnostics.Clean()),
			run.Duration().Round(time.Millisecond).String(),
			run.Document,
		})
	}
	fmt.Fprintln(out, renderTable([]tableColumn{
		{Header: "Run"},
		{Header: "Finished"},
		{Header: "Status"},
		{Header: "Transcript", Align: alignRight},
		{Header: "Annotations", Align: alignRight},
		{Header: "Clean"},
		{Header: "Took", Align: alignRight},
		{Header: "Document", MaxWidth: 40},
	}, rows))
}

func printRunAnnotations(cmd *cobra.Command, annotations []store.AnnotationRecord) {
	out := cmd.OutOrStdout()
	if len(annotations) == 0 {
		fmt.Fprintln(out, "No annotations recorded for this run")
		return
	}
	rows := make([][]string, 0, len(annotations))
	for _, a := range annotations {
		author := a.AuthorName
		if author == "" {
			author = a.AuthorInitials
		}
		rows = append(rows, []string{
			strconv.Itoa(a.Position),
			a.Slug,
			author,
			yesNo(a.AuthorResolved),
			yesNo(a.Published),
		})
	}
	fmt.Fprintln(out, renderTable([]tableColumn{
		{Header: "#", Align: alignRight},
		{Header: "Slug", MaxWidth: 48},
		{Header: "Author"},
		{Header: "Resolved"},
		{Header: "Published"},
	}, rows))
}
