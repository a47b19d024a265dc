package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingobuddy/internal/tutor"
)

var parseCmd = &cobra.Command{
	Use:   "parse <text|->",
	Short: "Run the reply parser on a raw tutor reply",
	Long:  "Decode a raw reply the way the chat does for the given mode. Pass - to read the reply from standard input.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modeName, _ := cmd.Flags().GetString("mode")
		strict, _ := cmd.Flags().GetBool("strict")

		mode, err := tutor.ParseMode(modeName)
		if err != nil {
			return err
		}

		raw := args[0]
		if raw == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			raw = strings.TrimRight(string(data), "\n")
		}

		reply, err := tutor.ParseStrict(raw, mode)
		var decodeErr *tutor.DecodeError
		switch {
		case errors.As(err, &decodeErr) && !strict:
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; using the raw text\n", err)
			reply = tutor.Parse(raw, mode)
		case err != nil:
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(struct {
			Reply      string            `json:"reply"`
			Correction *tutor.Correction `json:"correction"`
		}{reply.Text, reply.Correction})
	},
}

func init() {
	parseCmd.Flags().String("mode", "immersion", "Conversation mode: immersion, crosstalk or missions")
	parseCmd.Flags().Bool("strict", false, "Fail instead of falling back to the raw text")
}
