package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingobuddy/internal/calllog"
)

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Inspect the tutoring service call log",
}

var callsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		mode, _ := cmd.Flags().GetString("mode")

		st, err := openCallLogFromFlags(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		calls, err := st.Recent(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query calls: %w", err)
		}
		printCallList(cmd.OutOrStdout(), calls, strings.ToUpper(mode))
		return nil
	},
}

var callsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View the full request and response of a call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		st, err := openCallLogFromFlags(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		c, err := st.Get(cmd.Context(), id)
		if errors.Is(err, calllog.ErrNotFound) {
			return fmt.Errorf("call %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("get call: %w", err)
		}
		printCall(cmd.OutOrStdout(), c)
		return nil
	},
}

var callsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show call counts, success rate and latency by mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openCallLogFromFlags(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}
		printCallStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func init() {
	callsListCmd.Flags().Int("limit", 20, "Maximum number of calls to show")
	callsListCmd.Flags().String("mode", "", "Only show calls in this mode")

	callsCmd.AddCommand(callsListCmd)
	callsCmd.AddCommand(callsViewCmd)
	callsCmd.AddCommand(callsStatsCmd)
}

func openCallLogFromFlags(cmd *cobra.Command) (*calllog.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openCallLog(cfg)
}

func printCallList(out io.Writer, calls []calllog.Call, mode string) {
	if len(calls) == 0 {
		fmt.Fprintln(out, "No calls recorded.")
		return
	}

	fmt.Fprintf(out, "%-5s  %-19s  %-4s  %-9s  %-6s  %-6s  %-7s  %s\n",
		"ID", "Timestamp", "Kind", "Mode", "Lang", "Status", "Ms", "OK")
	fmt.Fprintln(out, strings.Repeat("─", 76))

	for _, c := range calls {
		if mode != "" && c.Mode != mode {
			continue
		}
		ok := "✓"
		if !c.Success {
			ok = "✗"
		}
		fmt.Fprintf(out, "%-5d  %-19s  %-4s  %-9s  %-6s  %-6d  %-7d  %s\n",
			c.ID,
			c.Timestamp.Local().Format("2006-01-02 15:04:05"),
			c.Kind,
			c.Mode,
			c.Language,
			c.Status,
			c.LatencyMs,
			ok,
		)
	}
}

func printCall(out io.Writer, c *calllog.Call) {
	sep := strings.Repeat("─", 60)

	fmt.Fprintf(out, "ID:        %d\n", c.ID)
	fmt.Fprintf(out, "Call:      %s\n", c.CallID)
	fmt.Fprintf(out, "Time:      %s\n", c.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Kind:      %s\n", c.Kind)
	fmt.Fprintf(out, "Mode:      %s\n", c.Mode)
	fmt.Fprintf(out, "Language:  %s\n", c.Language)
	fmt.Fprintf(out, "Status:    %d\n", c.Status)
	fmt.Fprintf(out, "Latency:   %dms\n", c.LatencyMs)
	fmt.Fprintf(out, "Success:   %v\n", c.Success)
	if c.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:     %s\n", c.ErrorMessage)
	}

	for _, section := range []struct{ title, body string }{
		{"REQUEST", c.RequestBody},
		{"RESPONSE", c.ResponseBody},
	} {
		fmt.Fprintln(out)
		fmt.Fprintln(out, sep)
		fmt.Fprintln(out, section.title)
		fmt.Fprintln(out, sep)
		if section.body != "" {
			fmt.Fprintln(out, section.body)
		} else {
			fmt.Fprintln(out, "(not captured)")
		}
	}
}

func printCallStats(out io.Writer, stats []calllog.ModeStats) {
	if len(stats) == 0 {
		fmt.Fprintln(out, "No calls recorded yet.")
		return
	}

	fmt.Fprintln(out, "Calls by Mode")
	fmt.Fprintln(out, strings.Repeat("─", 56))
	fmt.Fprintf(out, "%-12s  %6s  %9s  %9s  %8s\n", "Mode", "Calls", "Succeeded", "Rate", "Avg Ms")
	fmt.Fprintln(out, strings.Repeat("─", 56))

	var total, succeeded int
	for _, s := range stats {
		fmt.Fprintf(out, "%-12s  %6d  %9d  %8.1f%%  %8d\n",
			s.Mode, s.Calls, s.Succeeded, s.SuccessRate()*100, s.AvgLatencyMs)
		total += s.Calls
		succeeded += s.Succeeded
	}

	fmt.Fprintln(out, strings.Repeat("─", 56))
	rate := 0.0
	if total > 0 {
		rate = float64(succeeded) / float64(total) * 100
	}
	fmt.Fprintf(out, "%-12s  %6d  %9d  %8.1f%%\n", "TOTAL", total, succeeded, rate)
}
