package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"quizbox/internal/models"
)

// Load reads and validates the static question dataset. Every question
// must carry exactly four choices labeled A,B,C,D in order, a correct
// answer among them, and an id unique within the file. A question_count
// that disagrees with the actual list is reconciled to len(questions).
func Load(path string) (*models.QuizData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset %s: %w", path, err)
	}

	var data models.QuizData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("error parsing dataset %s: %w", path, err)
	}
	if err := Validate(&data); err != nil {
		return nil, err
	}
	data.QuestionCount = len(data.Questions)
	return &data, nil
}

// Validate checks the consumed shape of a dataset.
func Validate(data *models.QuizData) error {
	if len(data.Questions) == 0 {
		return fmt.Errorf("dataset has no questions")
	}
	seen := make(map[int]bool, len(data.Questions))
	for i, q := range data.Questions {
		if seen[q.ID] {
			return fmt.Errorf("question %d: duplicate id %d", i, q.ID)
		}
		seen[q.ID] = true

		if len(q.Choices) != len(models.OptionLabels) {
			return fmt.Errorf("question %d: expected %d choices, got %d", q.ID, len(models.OptionLabels), len(q.Choices))
		}
		for j, c := range q.Choices {
			if c.Option != models.OptionLabels[j] {
				return fmt.Errorf("question %d: choice %d labeled %q, want %q", q.ID, j, c.Option, models.OptionLabels[j])
			}
		}
		if !q.Answer.Option.Valid() {
			return fmt.Errorf("question %d: invalid answer option %q", q.ID, q.Answer.Option)
		}
	}
	return nil
}
