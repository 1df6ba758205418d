package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"annodocs/internal/parser"
)

const summaryWidth = 60

func newParseCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOutput bool
		metaKeys   []string
	)

	cmd := &cobra.Command{
		Use:   "parse [document]",
		Short: "Parse the document and show its segments without publishing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, documentPath, err := ctx.useDocument(args)
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cmd)
			if err != nil {
				return err
			}
			dirs, err := ctx.directories()
			if err != nil {
				return fmt.Errorf("load directories: %w", err)
			}
			file, err := os.Open(documentPath)
			if err != nil {
				return fmt.Errorf("open document: %w", err)
			}
			defer file.Close()

			result, err := parser.New(dirs, logger).ParseReader(file)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			printParseResult(cmd, result, metaKeys)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the parse result as JSON")
	cmd.Flags().StringSliceVar(&metaKeys, "meta", nil, "Add a column with this annotation metadata key (repeatable)")
	return cmd
}

func printParseResult(cmd *cobra.Command, result *parser.Result, metaKeys []string) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	rows := make([][]string, 0, len(result.Segments))
	for _, seg := range result.Segments {
		row := []string{
			strconv.Itoa(seg.Position),
			string(seg.Type),
			segmentLabel(seg),
		}
		for _, key := range metaKeys {
			row = append(row, metadataValue(seg, key))
		}
		rows = append(rows, append(row, segmentSummary(seg)))
	}
	if len(rows) > 0 {
		columns := []tableColumn{
			{Header: "#", Align: alignRight},
			{Header: "Type"},
			{Header: "Speaker/Slug", MaxWidth: 32},
		}
		for _, key := range metaKeys {
			columns = append(columns, tableColumn{Header: key, MaxWidth: 24})
		}
		columns = append(columns, tableColumn{Header: "Text", MaxWidth: summaryWidth})
		fmt.Fprintln(out, renderTable(columns, rows))
	} else {
		fmt.Fprintln(out, "No segments")
	}

	diag := result.Diagnostics
	fmt.Fprintln(out, renderStatusLine("Transcript", transcriptStatusKind(result.Status), result.Status.String(), colorize))
	fmt.Fprintln(out, renderStatusLine("Segments", statusInfo,
		fmt.Sprintf("%d transcript, %d annotations", diag.TranscriptBlocks, diag.Annotations), colorize))
	fmt.Fprintln(out, renderStatusLine("Diagnostics", diagnosticsKind(diag), diagnosticsSummary(diag), colorize))
}

func segmentLabel(seg parser.Segment) string {
	switch {
	case seg.Annotation != nil:
		return seg.Annotation.Slug
	case seg.Transcript != nil && seg.Transcript.Name != "":
		return seg.Transcript.Name
	default:
		return ""
	}
}

// metadataValue looks up key on an annotation. Transcript rows stay blank and
// missing keys print as a dash.
func metadataValue(seg parser.Segment, key string) string {
	if seg.Annotation == nil {
		return ""
	}
	if v, ok := seg.Annotation.Metadata.Get(strings.ToLower(strings.TrimSpace(key))); ok && v != "" {
		return v
	}
	return "-"
}

func segmentSummary(seg parser.Segment) string {
	switch {
	case seg.Annotation != nil:
		return plainText(seg.Annotation.Content)
	case seg.Transcript != nil:
		return plainText(seg.Transcript.Text)
	default:
		return ""
	}
}

// plainText drops tags from inline markup and collapses whitespace.
func plainText(markup string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			b.WriteByte(' ')
		}
	}
}

func diagnosticsSummary(diag parser.Diagnostics) string {
	if diag.Clean() {
		return "clean"
	}
	var parts []string
	add := func(count int, label string) {
		if count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, label))
		}
	}
	add(diag.UnresolvedAuthors, "unresolved authors")
	add(diag.MalformedMetadata, "malformed metadata lines")
	add(diag.ExtractionMismatch, "extraction mismatches")
	add(diag.UnclosedAnnotations, "unclosed annotations")
	add(diag.StrayEndMarkers, "stray end markers")
	add(diag.RestartedSpans, "restarted spans")
	if len(diag.DuplicateSlugs) > 0 {
		parts = append(parts, "duplicate slugs: "+strings.Join(diag.DuplicateSlugs, ", "))
	}
	return strings.Join(parts, "; ")
}
