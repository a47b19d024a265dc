package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingobuddy/internal/tutor"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the supported target languages",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-6s  %s\n", "Code", "Language")
		fmt.Fprintln(out, strings.Repeat("─", 30))
		for _, lang := range tutor.Languages() {
			fmt.Fprintf(out, "%-6s  %s\n", lang.Code, lang.Name)
		}
	},
}

var missionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "List the roleplay missions",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-14s  %-26s  %s\n", "ID", "Title", "Description")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, m := range tutor.Missions() {
			fmt.Fprintf(out, "%-14s  %-26s  %s\n", m.ID, m.Title, m.Description)
		}
	},
}
