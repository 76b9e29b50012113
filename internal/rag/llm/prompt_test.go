package llm

import (
	"strings"
	"testing"

	"github.com/avikal/ragchat/internal/domain/commonModels"
)

func TestBuildUserPrompt_ContainsAllParts(t *testing.T) {
	matches := []string{"chunk one", "chunk two"}
	history := []commonModels.Turn{
		{Question: "earlier question", Answer: "earlier answer"},
	}

	prompt := BuildUserPrompt("what now?", matches, history)

	for _, want := range []string{"chunk one", "chunk two", "earlier question", "earlier answer", "what now?"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	// Context must come before the question so the model reads it first.
	if strings.Index(prompt, "chunk one") > strings.Index(prompt, "what now?") {
		t.Error("retrieved context should precede the user question")
	}
}

func TestBuildUserPrompt_NoHistory(t *testing.T) {
	prompt := BuildUserPrompt("q", []string{"ctx"}, nil)
	if strings.Contains(prompt, "Conversation so far") {
		t.Error("history section should be omitted when there are no prior turns")
	}
}
