// Package stats derives read-only aggregates from persisted quiz
// results. It never mutates history.
package stats

import (
	"math"

	"quizbox/internal/models"
)

type Summary struct {
	TotalQuizzes   int `json:"totalQuizzes"`
	AverageScore   int `json:"averageScore"`
	TotalQuestions int `json:"totalQuestions"`
	CorrectAnswers int `json:"correctAnswers"`
	Accuracy       int `json:"accuracy"`
}

// Summarize folds a result list into profile aggregates. AverageScore
// is the rounded mean of per-attempt percentages; Accuracy is overall
// correct over overall attempted. Empty input yields all zeros.
func Summarize(results []models.QuizResult) Summary {
	s := Summary{TotalQuizzes: len(results)}
	if len(results) == 0 {
		return s
	}

	percentSum := 0
	for _, r := range results {
		percentSum += r.Percentage
		s.TotalQuestions += r.TotalQuestions
		s.CorrectAnswers += r.TotalQuestions - r.WrongAnswers
	}
	s.AverageScore = int(math.Round(float64(percentSum) / float64(len(results))))
	s.Accuracy = models.Percentage(s.CorrectAnswers, s.TotalQuestions)
	return s
}

// Band buckets a percentage for display: high from 70, medium from 50,
// low below that.
func Band(percentage int) string {
	switch {
	case percentage >= 70:
		return "high"
	case percentage >= 50:
		return "medium"
	default:
		return "low"
	}
}
