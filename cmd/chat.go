package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingobuddy/internal/session"
	"github.com/abhisek/lingobuddy/internal/tutor"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the tutor line by line, without the TUI",
	Long: `Chat with the tutor on plain standard input and output.

Commands:
  /fix    list the corrections made so far
  /reset  start the conversation over with the same selection
  /quit   leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectionFromFlags(cmd)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := fileLogger(cfg)
		if err != nil {
			return fmt.Errorf("set up logging: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		sender, closeLog, err := newSender(cfg, logger)
		if err != nil {
			return err
		}
		defer closeLog() //nolint:errcheck

		ctrl := session.New(sender, session.WithLogger(logger))
		return runChat(cmd.Context(), ctrl, sel, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	chatCmd.Flags().String("language", "", "Target language code (see `lingobuddy languages`)")
	chatCmd.Flags().String("mode", "immersion", "Conversation mode: immersion, crosstalk or missions")
	chatCmd.Flags().String("mission", "", "Mission id for missions mode (see `lingobuddy missions`)")
	_ = chatCmd.MarkFlagRequired("language")
}

// selection is a complete language, mode and mission choice.
type selection struct {
	language tutor.Language
	mode     tutor.Mode
	mission  *tutor.Mission
}

func selectionFromFlags(cmd *cobra.Command) (selection, error) {
	code, _ := cmd.Flags().GetString("language")
	modeName, _ := cmd.Flags().GetString("mode")
	missionID, _ := cmd.Flags().GetString("mission")

	var sel selection
	lang, err := tutor.LookupLanguage(code)
	if err != nil {
		return sel, err
	}
	mode, err := tutor.ParseMode(modeName)
	if err != nil {
		return sel, err
	}
	sel.language, sel.mode = lang, mode

	switch {
	case mode.RequiresMission() && missionID == "":
		return sel, tutor.ErrMissionRequired
	case !mode.RequiresMission() && missionID != "":
		return sel, fmt.Errorf("--mission only applies to missions mode")
	case missionID != "":
		m, err := tutor.LookupMission(missionID)
		if err != nil {
			return sel, err
		}
		sel.mission = &m
	}
	return sel, nil
}

// open applies sel to ctrl and runs the opening call.
func (s selection) open(ctx context.Context, ctrl *session.Controller) error {
	if _, err := ctrl.SelectLanguage(s.language); err != nil {
		return err
	}
	call, err := ctrl.SelectMode(s.mode)
	if err != nil {
		return err
	}
	if s.mission != nil {
		if call, err = ctrl.SelectMission(*s.mission); err != nil {
			return err
		}
	}
	ctrl.Do(ctx, call)

	if ctrl.Failure() == session.FailureInit {
		msg := ctrl.Err()
		ctrl.DismissError()
		return errors.New(msg)
	}
	return nil
}

func runChat(ctx context.Context, ctrl *session.Controller, sel selection, in io.Reader, out io.Writer) error {
	if err := sel.open(ctx, ctrl); err != nil {
		return err
	}

	title := fmt.Sprintf("%s - %s Mode", sel.language.Name, sel.mode.DisplayName())
	if sel.mission != nil {
		title += " | " + sel.mission.Title
	}
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, strings.Repeat("─", len([]rune(title))))
	printLastReply(out, ctrl)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/fix":
			printCorrections(out, ctrl.Messages())
			continue
		case "/reset":
			ctrl.Reset()
			if err := sel.open(ctx, ctrl); err != nil {
				return err
			}
			fmt.Fprintln(out, "-- new session --")
			printLastReply(out, ctrl)
			continue
		}

		ctrl.Do(ctx, ctrl.Send(line))
		if msg := ctrl.Err(); msg != "" {
			fmt.Fprintln(out, "! "+msg)
			ctrl.DismissError()
			continue
		}

		msgs := ctrl.Messages()
		if n := len(msgs); n >= 2 && msgs[n-2].Correction != nil {
			fmt.Fprintf(out, "  ✎ %s\n", msgs[n-2].Correction.Corrected)
		}
		printLastReply(out, ctrl)
	}
}

func printLastReply(out io.Writer, ctrl *session.Controller) {
	msgs := ctrl.Messages()
	if len(msgs) == 0 {
		return
	}
	if last := msgs[len(msgs)-1]; last.Role == tutor.RoleModel {
		fmt.Fprintln(out, "tutor: "+last.Text)
	}
}

func printCorrections(out io.Writer, msgs []tutor.Message) {
	n := 0
	for _, m := range msgs {
		if m.Role != tutor.RoleUser || m.Correction == nil {
			continue
		}
		n++
		c := m.Correction
		original := c.Original
		if original == "" {
			original = m.Text
		}
		fmt.Fprintf(out, "%d. %s\n   → %s\n", n, original, c.Corrected)
		if c.Explanation != "" {
			fmt.Fprintf(out, "   %s\n", c.Explanation)
		}
	}
	if n == 0 {
		fmt.Fprintln(out, "No corrections yet.")
	}
}
