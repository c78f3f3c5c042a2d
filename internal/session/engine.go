package session

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"quizbox/internal/models"
)

// State is the view state of one quiz attempt.
type State string

const (
	StateStart  State = "start"
	StateQuiz   State = "quiz"
	StateEnd    State = "end"
	StateReview State = "review"
)

var (
	// ErrEmptyReview is returned when review is requested with zero
	// wrong answers. Informational; the session stays in end.
	ErrEmptyReview = errors.New("session: no wrong answers to review")

	// ErrNotInState is returned when an operation is not legal in the
	// current view state.
	ErrNotInState = errors.New("session: operation not allowed in current state")

	// ErrNoQuestions is returned when a session would start with an
	// empty question set.
	ErrNoQuestions = errors.New("session: no questions selected")

	// ErrBadLimit is returned when the configured count is outside
	// [1, dataset size].
	ErrBadLimit = errors.New("session: question limit out of range")

	// ErrInvalidOption is returned for an answer outside A-D.
	ErrInvalidOption = errors.New("session: invalid option")
)

// ResultSink receives the completed result of a quiz attempt.
type ResultSink interface {
	AddResult(partial models.QuizResult) *models.QuizResult
}

// Config tunes an Engine. The zero value gives production behavior.
type Config struct {
	// Rand drives the shuffle. Nil seeds a fresh source.
	Rand *rand.Rand
	// TickInterval is the elapsed-time granularity. Zero means one
	// second. Tests set a long interval and drive Tick directly.
	TickInterval time.Duration
}

// Engine owns one quiz attempt at a time: question selection, answer
// tracking, scoring, timing and the start/quiz/end/review state machine.
type Engine struct {
	mu   sync.Mutex
	data *models.QuizData
	sink ResultSink
	rng  *rand.Rand
	tick time.Duration

	state           State
	questions       []models.Question
	current         int
	selected        models.Option
	showExplanation bool
	score           int
	elapsed         int
	answers         map[int]models.Option
	wrong           []models.Question

	timerStop chan struct{}
}

func New(data *models.QuizData, sink ResultSink, config *Config) *Engine {
	if config == nil {
		config = &Config{}
	}
	rng := config.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	tick := config.TickInterval
	if tick == 0 {
		tick = time.Second
	}
	return &Engine{
		data:  data,
		sink:  sink,
		rng:   rng,
		tick:  tick,
		state: StateStart,
	}
}

// Start selects questions and enters quiz. A zero limit takes the full
// dataset; otherwise limit must be in [1, dataset size]. Shuffling is a
// uniform permutation of the whole dataset before truncation; without
// it the first limit questions are taken in original order.
func (e *Engine) Start(shuffle bool, limit int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateStart {
		return fmt.Errorf("%w: start from %s", ErrNotInState, e.state)
	}
	total := len(e.data.Questions)
	if total == 0 {
		return ErrNoQuestions
	}
	if limit == 0 {
		limit = total
	}
	if limit < 1 || limit > total {
		return fmt.Errorf("%w: %d of %d", ErrBadLimit, limit, total)
	}

	selected := make([]models.Question, total)
	copy(selected, e.data.Questions)
	if shuffle {
		e.rng.Shuffle(total, func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
	}
	e.questions = selected[:limit]

	e.current = 0
	e.selected = ""
	e.showExplanation = false
	e.score = 0
	e.elapsed = 0
	e.answers = make(map[int]models.Option)
	e.wrong = nil
	e.state = StateQuiz
	e.startTimerLocked()
	return nil
}

// Answer records the chosen option for the current question. Only the
// first selection per question counts; repeats are ignored. A correct
// choice increments the score, and the explanation becomes visible
// either way.
func (e *Engine) Answer(option models.Option) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateQuiz && e.state != StateReview {
		return fmt.Errorf("%w: answer in %s", ErrNotInState, e.state)
	}
	if !option.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOption, option)
	}
	if e.selected != "" {
		// Already answered.
		return nil
	}

	q := e.questions[e.current]
	e.selected = option
	e.showExplanation = true
	e.answers[q.ID] = option
	if option == q.Answer.Option {
		e.score++
	}
	return nil
}

// Next advances to the following question, or finishes the attempt when
// the last question has been passed. Finishing from quiz stops the
// timer, computes the wrong subset (unanswered counts as wrong), builds
// the immutable result and hands it to the sink. Finishing from review
// only recomputes the wrong subset; review attempts are not persisted.
func (e *Engine) Next() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateQuiz && e.state != StateReview {
		return fmt.Errorf("%w: next in %s", ErrNotInState, e.state)
	}

	if e.current < len(e.questions)-1 {
		e.current++
		e.selected = ""
		e.showExplanation = false
		return nil
	}

	e.stopTimerLocked()

	wrong := make([]models.Question, 0)
	for _, q := range e.questions {
		if e.answers[q.ID] != q.Answer.Option {
			wrong = append(wrong, q)
		}
	}

	if e.state == StateQuiz && e.sink != nil {
		e.sink.AddResult(e.buildResultLocked(wrong))
	}

	e.wrong = wrong
	e.state = StateEnd
	return nil
}

func (e *Engine) buildResultLocked(wrong []models.Question) models.QuizResult {
	questions := make([]models.ResultQuestion, len(e.questions))
	for i, q := range e.questions {
		answer := e.answers[q.ID]
		questions[i] = models.ResultQuestion{
			ID:            q.ID,
			Question:      q.Prompt,
			UserAnswer:    answer,
			CorrectAnswer: q.Answer.Option,
			IsCorrect:     answer == q.Answer.Option,
		}
	}
	return models.QuizResult{
		Score:          e.score,
		TotalQuestions: len(e.questions),
		Percentage:     models.Percentage(e.score, len(e.questions)),
		TimeSeconds:    e.elapsed,
		WrongAnswers:   len(wrong),
		Questions:      questions,
	}
}

// Review re-enters the answering loop with exactly the previously wrong
// questions. Permitted only from end, and only when that subset is
// non-empty.
func (e *Engine) Review() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateEnd {
		return fmt.Errorf("%w: review from %s", ErrNotInState, e.state)
	}
	if len(e.wrong) == 0 {
		return ErrEmptyReview
	}

	e.questions = e.wrong
	e.current = 0
	e.selected = ""
	e.showExplanation = false
	e.score = 0
	e.elapsed = 0
	e.answers = make(map[int]models.Option)
	e.state = StateReview
	e.startTimerLocked()
	return nil
}

// Reset returns to the start screen from any state, discarding the
// in-progress attempt without persisting anything.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTimerLocked()
	e.questions = nil
	e.current = 0
	e.selected = ""
	e.showExplanation = false
	e.score = 0
	e.elapsed = 0
	e.answers = nil
	e.wrong = nil
	e.state = StateStart
}

// Close releases the timer. The engine is unusable afterwards only in
// the sense that no ticks arrive; state queries still work.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
}

// Tick advances the elapsed counter by one second. Driven by the
// internal ticker while in quiz or review; ticks arriving in any other
// state are dropped.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateQuiz || e.state == StateReview {
		e.elapsed++
	}
}

func (e *Engine) startTimerLocked() {
	e.stopTimerLocked()
	stop := make(chan struct{})
	e.timerStop = stop
	go func() {
		ticker := time.NewTicker(e.tick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.Tick()
			}
		}
	}()
}

func (e *Engine) stopTimerLocked() {
	if e.timerStop != nil {
		close(e.timerStop)
		e.timerStop = nil
	}
}

// FormatElapsed renders seconds as mm:ss.
func FormatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
