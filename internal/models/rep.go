package models

import (
	"fmt"
	"strings"
)

const (
	FormatAIGenerated = "AI Generated"

	DefaultEstimatedMinutes = 10
)

// Rep is a single actionable challenge. Reps are never mutated after creation.
type Rep struct {
	ID               string `json:"id" dynamodbav:"id"`
	Title            string `json:"title" dynamodbav:"title"`
	Description      string `json:"description" dynamodbav:"description"`
	DifficultyLevel  Level  `json:"difficultyLevel" dynamodbav:"difficultyLevel"`
	EstimatedMinutes int    `json:"estimatedMinutes" dynamodbav:"estimatedMinutes"`
	FocusAreaID      string `json:"focusAreaId" dynamodbav:"focusAreaId"`
	Format           string `json:"format,omitempty" dynamodbav:"format,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty" dynamodbav:"createdAt,omitempty"`
}

// FormatRepHistory renders prior reps as a numbered list for prompts.
func FormatRepHistory(reps []Rep) string {
	if len(reps) == 0 {
		return "(none yet)"
	}
	var sb strings.Builder
	for i, r := range reps {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, r.Title))
		if r.Description != "" {
			sb.WriteString(fmt.Sprintf(" - %s", r.Description))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
