package session

import "quizbox/internal/models"

// QuestionView is the renderable slice of the current question. The
// correct answer and explanation are withheld until the question has
// been answered.
type QuestionView struct {
	Index           int             `json:"index"`
	Total           int             `json:"total"`
	ID              int             `json:"id"`
	Prompt          string          `json:"question"`
	Choices         []models.Choice `json:"choices"`
	Selected        models.Option   `json:"selected,omitempty"`
	ShowExplanation bool            `json:"showExplanation"`
	CorrectAnswer   models.Option   `json:"correctAnswer,omitempty"`
	Explanation     string          `json:"explanation,omitempty"`
	IsCorrect       bool            `json:"isCorrect"`
}

// View is a point-in-time snapshot of the session for rendering.
type View struct {
	State          State         `json:"state"`
	Title          string        `json:"title"`
	QuestionCount  int           `json:"questionCount"`
	Question       *QuestionView `json:"question,omitempty"`
	Score          int           `json:"score"`
	Elapsed        int           `json:"elapsedSeconds"`
	ElapsedDisplay string        `json:"elapsedDisplay"`
	WrongAnswers   int           `json:"wrongAnswers"`
}

// View snapshots the current session state.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		State:          e.state,
		Title:          e.data.Title,
		QuestionCount:  len(e.data.Questions),
		Score:          e.score,
		Elapsed:        e.elapsed,
		ElapsedDisplay: FormatElapsed(e.elapsed),
		WrongAnswers:   len(e.wrong),
	}

	if (e.state == StateQuiz || e.state == StateReview) && e.current < len(e.questions) {
		q := e.questions[e.current]
		qv := &QuestionView{
			Index:           e.current,
			Total:           len(e.questions),
			ID:              q.ID,
			Prompt:          q.Prompt,
			Choices:         q.Choices,
			Selected:        e.selected,
			ShowExplanation: e.showExplanation,
		}
		if e.showExplanation {
			qv.CorrectAnswer = q.Answer.Option
			qv.Explanation = q.Explanation
			qv.IsCorrect = e.selected == q.Answer.Option
		}
		v.Question = qv
	}
	return v
}

// State returns the current view state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
