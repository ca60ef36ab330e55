package ai

import (
	"fmt"
	"strings"
	"time"

	"example.com/notes-ai/internal/notes"
)

// NoNotesMessage is returned instead of asking the model when the user has no notes.
const NoNotesMessage = "You don't have any notes yet."

const systemTemplate = `<system>
You are a helpful notes assistant. Answer questions based strictly on these notes:
%s

Rules:
- Respond in valid HTML
- Keep answers concise
- Use bullet points when listing
- Highlight important dates in <strong>
- If unsure, say "I don't have information about that"
</system>`

// FormatNotes renders every note as a tagged block carrying its text and both timestamps.
func FormatNotes(ns []notes.Note) string {
	blocks := make([]string, 0, len(ns))
	for _, n := range ns {
		blocks = append(blocks, fmt.Sprintf(
			"<note>\n<text>%s</text>\n<created>%s</created>\n<updated>%s</updated>\n</note>",
			n.Text,
			n.CreatedAt.UTC().Format(time.RFC3339),
			n.UpdatedAt.UTC().Format(time.RFC3339),
		))
	}
	return strings.Join(blocks, "\n")
}

// BuildConversation wraps each question in the instruction delimiter and
// appends its stored answer, oldest turn first. Turns without an answer yet
// contribute only the question.
func BuildConversation(questions, answers []string) []string {
	out := make([]string, 0, len(questions)*2)
	for i, q := range questions {
		out = append(out, "[INST] "+q+" [/INST]")
		if i < len(answers) && answers[i] != "" {
			out = append(out, answers[i])
		}
	}
	return out
}

// BuildPrompt puts the system block first and the conversation after it.
func BuildPrompt(formattedNotes string, conversation []string) string {
	system := fmt.Sprintf(systemTemplate, formattedNotes)
	return strings.TrimSpace(system + "\n\n" + strings.Join(conversation, "\n\n"))
}
