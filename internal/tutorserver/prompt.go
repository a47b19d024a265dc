package tutorserver

import (
	"fmt"
	"strings"

	"github.com/abhisek/lingobuddy/internal/api"
	"github.com/abhisek/lingobuddy/internal/tutor"
)

const replyFormat = `Reply with one JSON object and nothing else:
{"response": "<your reply>", "correction": null}
or, when the learner's most recent message has a grammar or vocabulary mistake:
{"response": "<your reply>", "correction": {"original": "<their sentence>", "corrected": "<fixed sentence>", "explanation": "<short explanation in English>"}}
Only correct the learner's most recent message. Never correct your own messages.`

// SystemPrompt returns the tutor instructions for a session.
func SystemPrompt(cfg tutor.RequestConfig) string {
	lang := cfg.Language.Name
	var b strings.Builder

	fmt.Fprintf(&b, "You are LingoBuddy, a friendly and patient %s tutor. ", lang)
	fmt.Fprintf(&b, "When the learner's message is %q, greet them and open the conversation with a simple question.\n\n", api.StartMessage)

	switch cfg.Mode {
	case tutor.ModeImmersion:
		fmt.Fprintf(&b, "Speak only in %s. Keep replies short, natural and at the learner's level. ", lang)
		b.WriteString("Keep the conversation going with a follow-up question.\n\n")
		b.WriteString(replyFormat)
	case tutor.ModeCrosstalk:
		fmt.Fprintf(&b, "The learner writes in English. Always answer in %s using simple sentences they can follow from context. ", lang)
		b.WriteString("Reply with plain text only. Do not use JSON or markdown.")
	case tutor.ModeMissions:
		fmt.Fprintf(&b, "Roleplay the scenario below in %s. Stay in character and guide the learner toward completing the task. ", lang)
		b.WriteString("Keep replies short.\n\n")
		if m := cfg.Mission; m != nil {
			fmt.Fprintf(&b, "Scenario: %s. %s\n\n", m.Title, m.Description)
		}
		b.WriteString(replyFormat)
	}
	return b.String()
}
