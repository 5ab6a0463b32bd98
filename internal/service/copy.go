package service

import (
	"SwipeVault/internal/ai"
	"context"
	"errors"
	"fmt"
	"strings"
)

// BuildCopyPrompt assembles the generation prompt from the brief and the
// transcripts of the referenced swipes.
func BuildCopyPrompt(brief string, transcripts []string) string {
	var b strings.Builder
	b.WriteString("You are an advertising copywriter. Write ad copy for the brief below.\n\n")
	b.WriteString("Brief:\n")
	b.WriteString(brief)
	if len(transcripts) > 0 {
		b.WriteString("\n\nReference ads (transcripts of examples that worked):\n")
		for i, t := range transcripts {
			fmt.Fprintf(&b, "\n--- Example %d ---\n%s\n", i+1, t)
		}
	}
	return b.String()
}

// GenerateCopy proxies a brief plus swipe transcripts to the completion API.
func GenerateCopy(ctx context.Context, userID uint64, brief string, swipeIDs []string) (string, error) {
	if strings.TrimSpace(brief) == "" {
		return "", errors.New("brief is required")
	}
	transcripts, err := SwipeTranscripts(userID, swipeIDs)
	if err != nil {
		return "", err
	}
	return ai.Complete(ctx, BuildCopyPrompt(brief, transcripts))
}

// EditCopy proxies an edit instruction over existing text to the completion
// API. No editing logic lives here.
func EditCopy(ctx context.Context, text, instruction string) (string, error) {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(instruction) == "" {
		return "", errors.New("text and instruction are required")
	}
	prompt := fmt.Sprintf(
		"Rewrite the following ad copy according to the instruction. Return only the rewritten copy.\n\nInstruction: %s\n\nCopy:\n%s",
		instruction, text,
	)
	return ai.Complete(ctx, prompt)
}
