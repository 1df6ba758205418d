package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newDirectoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	dirCmd := &cobra.Command{
		Use:   "directory",
		Short: "Inspect the speaker and author directories",
	}
	dirCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print as JSON")

	dirCmd.AddCommand(&cobra.Command{
		Use:   "speakers",
		Short: "List known speakers and their classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := ctx.directories()
			if err != nil {
				return err
			}
			entries := dirs.Speakers.Entries()
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			title := cases.Title(language.English)
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Name, title.String(strings.ToLower(e.Name)), e.Class})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]tableColumn{
				{Header: "Name"},
				{Header: "Display"},
				{Header: "Class"},
			}, rows))
			return nil
		},
	})

	dirCmd.AddCommand(&cobra.Command{
		Use:   "authors",
		Short: "List fact-checker profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := ctx.directories()
			if err != nil {
				return err
			}
			entries := dirs.Authors.Entries()
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No authors configured")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, a := range entries {
				rows = append(rows, []string{a.Initials, a.Name, a.Role, yesNo(a.Page != ""), yesNo(a.Image != "")})
			}
			fmt.Fprintln(out, renderTable([]tableColumn{
				{Header: "Initials"},
				{Header: "Name"},
				{Header: "Role", MaxWidth: 32},
				{Header: "Page"},
				{Header: "Image"},
			}, rows))
			return nil
		},
	})

	dirCmd.AddCommand(&cobra.Command{
		Use:   "suggest NAME",
		Short: "Suggest the known speaker closest to a misspelled name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := ctx.directories()
			if err != nil {
				return err
			}
			name := strings.ToUpper(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if class, ok := dirs.Speakers.Class(name); ok {
				fmt.Fprintf(out, "%s is a known speaker (class %q)\n", name, class)
				return nil
			}
			suggestion, ok := dirs.Speakers.Suggest(name)
			if !ok {
				return fmt.Errorf("no known speaker resembles %q", name)
			}
			fmt.Fprintf(out, "Did you mean %s?\n", suggestion)
			return nil
		},
	})

	return dirCmd
}
