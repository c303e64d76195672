package quiz

import (
	"strings"

	"github.com/studyhall/studyhall/internal/catalog"
)

// Score grades a submitted answer sheet against the canonical key.
// Comparison is case-insensitive on the single answer letter; a question with
// no submitted entry, or a wrong one, counts as incorrect. An empty question
// set scores 0 rather than dividing by zero. Deterministic and side-effect
// free.
func Score(questions []catalog.Question, submitted AnswerSheet) (correct int, percent float64) {
	for _, q := range questions {
		if answerMatches(submitted[q.ID], q.CorrectAnswer) {
			correct++
		}
	}
	if len(questions) == 0 {
		return 0, 0
	}
	return correct, float64(correct) / float64(len(questions)) * 100
}

func answerMatches(submitted, key string) bool {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return false
	}
	return strings.EqualFold(submitted, strings.TrimSpace(key))
}
