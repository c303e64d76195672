package catalog

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("not found")

type Discipline struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
	CreatedAt   int64  `json:"created_at,omitempty"`
}

type Module struct {
	ID           string `json:"id"`
	DisciplineID string `json:"discipline_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Order        int    `json:"order"`
	CreatedAt    int64  `json:"created_at,omitempty"`
}

type VideoLesson struct {
	ID              string `json:"id"`
	ModuleID        string `json:"module_id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	VideoURL        string `json:"video_url"`
	VideoType       string `json:"video_type"` // youtube|vimeo|direct
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Order           int    `json:"order"`
	CreatedAt       int64  `json:"created_at,omitempty"`
}

type Material struct {
	ID          string `json:"id"`
	ModuleID    string `json:"module_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	FilePath    string `json:"file_path,omitempty"`
	FileType    string `json:"file_type,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	Order       int    `json:"order"`
	CreatedAt   int64  `json:"created_at,omitempty"`
}

type Quiz struct {
	ID               string `json:"id"`
	ModuleID         string `json:"module_id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	TimeLimitMinutes int    `json:"time_limit_minutes"` // advisory, not enforced
	Order            int    `json:"order"`
	CreatedAt        int64  `json:"created_at,omitempty"`
}

// Question carries five option slots A-E; E is optional. CorrectAnswer is a
// single letter and must point at a non-empty option.
type Question struct {
	ID            string `json:"id"`
	QuizID        string `json:"quiz_id"`
	Text          string `json:"text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	OptionE       string `json:"option_e,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
	Order         int    `json:"order"`
}

// Option returns the option text for a letter, or "" for an unknown or
// empty slot.
func (q Question) Option(letter string) string {
	switch strings.ToUpper(strings.TrimSpace(letter)) {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	case "E":
		return q.OptionE
	}
	return ""
}

// Sanitized strips the answer key and explanation for payloads shown while
// an attempt is in progress.
func (q Question) Sanitized() Question {
	q.CorrectAnswer = ""
	q.Explanation = ""
	return q
}

// Validate enforces the question invariants before persistence.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("question text required")
	}
	if q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" {
		return errors.New("options A-D required")
	}
	letter := strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
	if len(letter) != 1 || letter < "A" || letter > "E" {
		return errors.New("correct_answer must be a letter A-E")
	}
	if q.Option(letter) == "" {
		return errors.New("correct_answer points at an empty option")
	}
	return nil
}

func normalizeLetter(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SearchResults groups matches across the catalog entity kinds.
type SearchResults struct {
	Disciplines []Discipline  `json:"disciplines"`
	Modules     []Module      `json:"modules"`
	Videos      []VideoLesson `json:"videos"`
	Materials   []Material    `json:"materials"`
	Quizzes     []Quiz        `json:"quizzes"`
}
