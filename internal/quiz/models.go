package quiz

import "encoding/json"

// Attempt is one user's pass at a quiz. It is created in progress and
// mutated exactly once, by completion; TotalQuestions is the question count
// snapshot taken at start and is never retroactively changed.
type Attempt struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	QuizID           string      `json:"quiz_id"`
	TotalQuestions   int         `json:"total_questions"`
	CorrectAnswers   int         `json:"correct_answers"`
	Score            float64     `json:"score"`
	TimeSpentSeconds int         `json:"time_spent_seconds"`
	Completed        bool        `json:"completed"`
	StartedAt        int64       `json:"started_at"`
	FinishedAt       int64       `json:"finished_at,omitempty"` // 0 until completed
	Answers          AnswerSheet `json:"answers,omitempty"`
}

// AnswerSheet maps question ID to the submitted letter. The full mapping is
// persisted on completion, including entries for questions no longer present,
// for audit purposes.
type AnswerSheet map[string]string

const answerSheetVersion = 1

type answerSheetDoc struct {
	V       int               `json:"v"`
	Answers map[string]string `json:"answers"`
}

// Encode serializes the sheet in the versioned stored form.
func (s AnswerSheet) Encode() (string, error) {
	doc := answerSheetDoc{V: answerSheetVersion, Answers: s}
	if doc.Answers == nil {
		doc.Answers = map[string]string{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeAnswerSheet reads the stored form. It accepts the versioned document
// and, for rows written before versioning, a bare question→letter map.
func DecodeAnswerSheet(raw string) (AnswerSheet, error) {
	if raw == "" {
		return AnswerSheet{}, nil
	}
	var doc answerSheetDoc
	if err := json.Unmarshal([]byte(raw), &doc); err == nil && doc.V > 0 {
		if doc.Answers == nil {
			doc.Answers = map[string]string{}
		}
		return AnswerSheet(doc.Answers), nil
	}
	var bare map[string]string
	if err := json.Unmarshal([]byte(raw), &bare); err != nil {
		return nil, err
	}
	if bare == nil {
		bare = map[string]string{}
	}
	return AnswerSheet(bare), nil
}
