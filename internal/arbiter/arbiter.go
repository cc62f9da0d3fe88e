// Package arbiter chooses between a first translation attempt and its
// amplified retry.
package arbiter

import (
	"fmt"
	"strings"

	"github.com/valpere/listran/internal/lexicon"
)

const (
	// MinTitleRunes is the length a retried title needs to be preferred.
	MinTitleRunes = 3
	// MinDescriptionRunes is the length a retried description needs to be
	// preferred.
	MinDescriptionRunes = 20
)

// EvaluationResult records which attempt won and why.
type EvaluationResult struct {
	UseRetry  bool
	Reasoning string
}

// Title prefers the retry when it is non-trivially long.
func Title(original, retry string) EvaluationResult {
	return byLength("title", original, retry, MinTitleRunes)
}

// Description prefers the retry when it is non-trivially long.
func Description(original, retry string) EvaluationResult {
	return byLength("description", original, retry, MinDescriptionRunes)
}

// Bullets prefers whichever attempt kept more lines; ties keep the original.
func Bullets(original, retry []string) EvaluationResult {
	if len(retry) > len(original) {
		return EvaluationResult{
			UseRetry:  true,
			Reasoning: fmt.Sprintf("retry kept %d bullets, original %d", len(retry), len(original)),
		}
	}
	return EvaluationResult{
		Reasoning: fmt.Sprintf("original kept %d bullets, retry %d", len(original), len(retry)),
	}
}

func byLength(kind, original, retry string, min int) EvaluationResult {
	n := lexicon.RuneLen(strings.TrimSpace(retry))
	if n >= min {
		return EvaluationResult{UseRetry: true, Reasoning: fmt.Sprintf("%s retry accepted (%d chars)", kind, n)}
	}
	if strings.TrimSpace(original) == "" {
		return EvaluationResult{UseRetry: n > 0, Reasoning: fmt.Sprintf("%s original empty", kind)}
	}
	return EvaluationResult{Reasoning: fmt.Sprintf("%s retry too short (%d chars), keeping original", kind, n)}
}
