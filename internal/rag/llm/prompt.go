package llm

import (
	"fmt"
	"strings"

	"github.com/avikal/ragchat/internal/domain/commonModels"
)

// BuildUserPrompt assembles the retrieved context, prior turns and the
// new user question into the single prompt sent to the model. Both
// provider implementations share this so the prompt shape never drifts
// between them.
func BuildUserPrompt(query string, matches []string, history []commonModels.Turn) string {
	var b strings.Builder

	b.WriteString("Context:\n")
	b.WriteString(strings.Join(matches, "\n"))

	if len(history) > 0 {
		b.WriteString("\n\nConversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", turn.Question, turn.Answer)
		}
	}

	fmt.Fprintf(&b, "\nUser Question: %s", query)
	return b.String()
}
