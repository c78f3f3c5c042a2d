package models

import (
	"math"
	"time"
)

// ResultQuestion is a frozen per-question snapshot inside a QuizResult.
// UserAnswer is empty when the question was never answered.
type ResultQuestion struct {
	ID            int    `bson:"question_id" json:"id"`
	Question      string `bson:"question" json:"question"`
	UserAnswer    Option `bson:"user_answer,omitempty" json:"userAnswer,omitempty"`
	CorrectAnswer Option `bson:"correct_answer" json:"correctAnswer"`
	IsCorrect     bool   `bson:"is_correct" json:"isCorrect"`
}

// QuizResult is the immutable record of one completed attempt.
// It is created exactly once when a session finishes and never mutated.
type QuizResult struct {
	ID             string           `bson:"_id,omitempty" json:"id"`
	Date           time.Time        `bson:"date" json:"date"`
	Score          int              `bson:"score" json:"score"`
	TotalQuestions int              `bson:"total_questions" json:"totalQuestions"`
	Percentage     int              `bson:"percentage" json:"percentage"`
	TimeSeconds    int              `bson:"time_seconds" json:"timeSeconds"`
	WrongAnswers   int              `bson:"wrong_answers" json:"wrongAnswers"`
	Questions      []ResultQuestion `bson:"questions" json:"questions"`
}

// Percentage converts a score out of total into a rounded percent.
// A zero total yields 0 rather than dividing by zero.
func Percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
