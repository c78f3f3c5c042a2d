package session

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"quizbox/internal/models"
)

// sinkRecorder captures handed-off results the way the history store
// would: id and timestamp assigned, newest first.
type sinkRecorder struct {
	results []models.QuizResult
}

func (s *sinkRecorder) AddResult(partial models.QuizResult) *models.QuizResult {
	partial.ID = uuid.NewString()
	partial.Date = time.Now()
	s.results = append([]models.QuizResult{partial}, s.results...)
	return &partial
}

// makeData builds n questions, ids 1..n, all with correct answer A.
func makeData(n int) *models.QuizData {
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = models.Question{
			ID:     i + 1,
			Prompt: "question",
			Choices: []models.Choice{
				{Option: models.OptionA, Text: "a"},
				{Option: models.OptionB, Text: "b"},
				{Option: models.OptionC, Text: "c"},
				{Option: models.OptionD, Text: "d"},
			},
			Answer:      models.Answer{Option: models.OptionA},
			Explanation: "a is right",
		}
	}
	return &models.QuizData{Title: "test", QuestionCount: n, Questions: questions}
}

func newTestEngine(data *models.QuizData, sink ResultSink) *Engine {
	return New(data, sink, &Config{
		Rand: rand.New(rand.NewSource(1)),
		// Keep the real ticker quiet; tests drive Tick directly.
		TickInterval: time.Hour,
	})
}

func TestStartWithoutShuffleTakesPrefix(t *testing.T) {
	e := newTestEngine(makeData(5), nil)
	defer e.Close()

	if err := e.Start(false, 3); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if len(e.questions) != 3 {
		t.Fatalf("Expected 3 questions, got %d", len(e.questions))
	}
	for i, q := range e.questions {
		if q.ID != i+1 {
			t.Errorf("Question %d: expected id %d, got %d", i, i+1, q.ID)
		}
	}
	if e.State() != StateQuiz {
		t.Errorf("Expected state quiz, got %s", e.State())
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	data := makeData(20)
	for seed := int64(0); seed < 5; seed++ {
		e := New(data, nil, &Config{
			Rand:         rand.New(rand.NewSource(seed)),
			TickInterval: time.Hour,
		})
		if err := e.Start(true, 20); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		seen := make(map[int]bool)
		for _, q := range e.questions {
			if seen[q.ID] {
				t.Fatalf("seed %d: duplicate question id %d", seed, q.ID)
			}
			seen[q.ID] = true
		}
		if len(seen) != 20 {
			t.Errorf("seed %d: expected 20 distinct questions, got %d", seed, len(seen))
		}
		e.Close()
	}
}

func TestStartLimitValidation(t *testing.T) {
	e := newTestEngine(makeData(5), nil)
	defer e.Close()

	for _, limit := range []int{-1, 6, 100} {
		if err := e.Start(false, limit); !errors.Is(err, ErrBadLimit) {
			t.Errorf("Start(limit=%d): expected ErrBadLimit, got %v", limit, err)
		}
	}

	// Zero means the full dataset.
	if err := e.Start(false, 0); err != nil {
		t.Fatalf("Start(limit=0) failed: %v", err)
	}
	if len(e.questions) != 5 {
		t.Errorf("Expected full dataset of 5, got %d", len(e.questions))
	}
}

func TestStartOnlyFromStartState(t *testing.T) {
	e := newTestEngine(makeData(3), nil)
	defer e.Close()

	if err := e.Start(false, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := e.Start(false, 0); !errors.Is(err, ErrNotInState) {
		t.Errorf("Expected ErrNotInState for Start while in quiz, got %v", err)
	}

	e.Reset()
	if err := e.Start(false, 0); err != nil {
		t.Errorf("Start after Reset failed: %v", err)
	}
}

func TestAnswerLatch(t *testing.T) {
	e := newTestEngine(makeData(3), nil)
	defer e.Close()
	if err := e.Start(false, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := e.Answer(models.OptionB); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	// A second selection for the same question is ignored, even if it
	// would have been correct.
	if err := e.Answer(models.OptionA); err != nil {
		t.Fatalf("Repeat answer returned error: %v", err)
	}
	if e.score != 0 {
		t.Errorf("Expected score 0 after latched wrong answer, got %d", e.score)
	}
	if e.answers[1] != models.OptionB {
		t.Errorf("Expected recorded answer B, got %q", e.answers[1])
	}
}

func TestAnswerValidation(t *testing.T) {
	e := newTestEngine(makeData(3), nil)
	defer e.Close()

	if err := e.Answer(models.OptionA); !errors.Is(err, ErrNotInState) {
		t.Errorf("Expected ErrNotInState before start, got %v", err)
	}
	if err := e.Start(false, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := e.Answer("E"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Expected ErrInvalidOption, got %v", err)
	}
}

func TestExplanationRevealedOnlyAfterAnswer(t *testing.T) {
	e := newTestEngine(makeData(3), nil)
	defer e.Close()
	if err := e.Start(false, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	v := e.View()
	if v.Question == nil {
		t.Fatal("Expected a current question in view")
	}
	if v.Question.CorrectAnswer != "" || v.Question.Explanation != "" {
		t.Error("Correct answer leaked before answering")
	}

	if err := e.Answer(models.OptionA); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	v = e.View()
	if !v.Question.ShowExplanation {
		t.Error("Expected explanation after answering")
	}
	if v.Question.CorrectAnswer != models.OptionA {
		t.Errorf("Expected correct answer A in view, got %q", v.Question.CorrectAnswer)
	}
	if !v.Question.IsCorrect {
		t.Error("Expected IsCorrect true")
	}
}

// Scenario: all answers correct. Score and percentage are full, the
// wrong subset is empty and review is refused.
func TestAllCorrect(t *testing.T) {
	sink := &sinkRecorder{}
	e := newTestEngine(makeData(5), sink)
	defer e.Close()
	if err := e.Start(false, 3); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := e.Answer(models.OptionA); err != nil {
			t.Fatalf("Answer %d failed: %v", i, err)
		}
		if err := e.Next(); err != nil {
			t.Fatalf("Next %d failed: %v", i, err)
		}
	}

	if e.State() != StateEnd {
		t.Fatalf("Expected state end, got %s", e.State())
	}
	if len(sink.results) != 1 {
		t.Fatalf("Expected 1 persisted result, got %d", len(sink.results))
	}
	r := sink.results[0]
	if r.Score != 3 || r.TotalQuestions != 3 || r.Percentage != 100 || r.WrongAnswers != 0 {
		t.Errorf("Unexpected result: %+v", r)
	}

	if err := e.Review(); !errors.Is(err, ErrEmptyReview) {
		t.Errorf("Expected ErrEmptyReview, got %v", err)
	}
	if e.State() != StateEnd {
		t.Errorf("Expected state to stay end, got %s", e.State())
	}
}

// Scenario: one of three correct, then a full-correct review. The
// review produces an empty wrong set of its own but the originally
// persisted result is unchanged and no second result is persisted.
func TestReviewFlow(t *testing.T) {
	sink := &sinkRecorder{}
	e := newTestEngine(makeData(3), sink)
	defer e.Close()
	if err := e.Start(false, 3); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	answers := []models.Option{models.OptionA, models.OptionB, models.OptionC}
	for _, a := range answers {
		if err := e.Answer(a); err != nil {
			t.Fatalf("Answer failed: %v", err)
		}
		if err := e.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
	}

	if len(sink.results) != 1 {
		t.Fatalf("Expected 1 persisted result, got %d", len(sink.results))
	}
	r := sink.results[0]
	if r.Score != 1 || r.Percentage != 33 || r.WrongAnswers != 2 {
		t.Errorf("Unexpected result: %+v", r)
	}
	if len(r.Questions) != 3 {
		t.Fatalf("Expected 3 question snapshots, got %d", len(r.Questions))
	}
	if !r.Questions[0].IsCorrect || r.Questions[1].IsCorrect || r.Questions[2].IsCorrect {
		t.Errorf("Unexpected correctness flags: %+v", r.Questions)
	}

	if err := e.Review(); err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if e.State() != StateReview {
		t.Fatalf("Expected state review, got %s", e.State())
	}
	if len(e.questions) != 2 {
		t.Fatalf("Expected 2 review questions, got %d", len(e.questions))
	}
	if e.questions[0].ID != 2 || e.questions[1].ID != 3 {
		t.Errorf("Expected review questions 2 and 3, got %d and %d", e.questions[0].ID, e.questions[1].ID)
	}
	if e.score != 0 || e.elapsed != 0 || len(e.answers) != 0 {
		t.Error("Expected review to reset score, timer and answers")
	}

	// Answer both review questions correctly.
	for i := 0; i < 2; i++ {
		if err := e.Answer(models.OptionA); err != nil {
			t.Fatalf("Review answer failed: %v", err)
		}
		if err := e.Next(); err != nil {
			t.Fatalf("Review next failed: %v", err)
		}
	}

	if e.State() != StateEnd {
		t.Fatalf("Expected state end after review, got %s", e.State())
	}
	if len(e.wrong) != 0 {
		t.Errorf("Expected empty wrong set after perfect review, got %d", len(e.wrong))
	}
	// Review attempts are never persisted, and the original record is
	// untouched.
	if len(sink.results) != 1 {
		t.Errorf("Expected still 1 persisted result, got %d", len(sink.results))
	}
	if sink.results[0].Score != 1 || sink.results[0].WrongAnswers != 2 {
		t.Errorf("Original result mutated: %+v", sink.results[0])
	}
}

func TestUnansweredCountsAsWrong(t *testing.T) {
	sink := &sinkRecorder{}
	e := newTestEngine(makeData(2), sink)
	defer e.Close()
	if err := e.Start(false, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Skip both questions without answering.
	if err := e.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if err := e.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	if len(sink.results) != 1 {
		t.Fatalf("Expected 1 persisted result, got %d", len(sink.results))
	}
	r := sink.results[0]
	if r.Score != 0 || r.WrongAnswers != 2 {
		t.Errorf("Unexpected result: %+v", r)
	}
	if r.Questions[0].UserAnswer != "" {
		t.Errorf("Expected absent user answer, got %q", r.Questions[0].UserAnswer)
	}
}

func TestTimer(t *testing.T) {
	e := newTestEngine(makeData(2), nil)
	defer e.Close()

	// Ticks outside quiz/review are dropped.
	e.Tick()
	if e.View().Elapsed != 0 {
		t.Error("Tick counted while in start")
	}

	if err := e.Start(false, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 65; i++ {
		e.Tick()
	}
	v := e.View()
	if v.Elapsed != 65 {
		t.Errorf("Expected 65 elapsed seconds, got %d", v.Elapsed)
	}
	if v.ElapsedDisplay != "01:05" {
		t.Errorf("Expected display 01:05, got %q", v.ElapsedDisplay)
	}

	// Finish: the snapshot carries the elapsed time and later ticks are
	// dropped again.
	if err := e.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if err := e.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	e.Tick()
	if e.View().Elapsed != 65 {
		t.Error("Tick counted while in end")
	}
}

func TestResultCapturesElapsed(t *testing.T) {
	sink := &sinkRecorder{}
	e := newTestEngine(makeData(1), sink)
	defer e.Close()
	if err := e.Start(false, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 42; i++ {
		e.Tick()
	}
	if err := e.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if sink.results[0].TimeSeconds != 42 {
		t.Errorf("Expected 42 seconds in result, got %d", sink.results[0].TimeSeconds)
	}
}

func TestResetDiscardsWithoutPersisting(t *testing.T) {
	sink := &sinkRecorder{}
	e := newTestEngine(makeData(3), sink)
	defer e.Close()
	if err := e.Start(false, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := e.Answer(models.OptionA); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	e.Reset()
	if e.State() != StateStart {
		t.Errorf("Expected state start, got %s", e.State())
	}
	if len(sink.results) != 0 {
		t.Errorf("Expected no persisted results after abandon, got %d", len(sink.results))
	}
	v := e.View()
	if v.Score != 0 || v.Elapsed != 0 || v.Question != nil {
		t.Errorf("Expected clean view after reset, got %+v", v)
	}
}

// Score always equals the incremental tally of correct recorded answers.
func TestScoreInvariant(t *testing.T) {
	data := makeData(10)
	// Vary the correct answers a bit.
	data.Questions[3].Answer.Option = models.OptionC
	data.Questions[7].Answer.Option = models.OptionD

	e := newTestEngine(data, nil)
	defer e.Close()
	if err := e.Start(false, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	picks := []models.Option{"A", "B", "C", "C", "A", "D", "A", "D", "B", "A"}
	for i, p := range picks {
		if err := e.Answer(p); err != nil {
			t.Fatalf("Answer %d failed: %v", i, err)
		}

		expected := 0
		for _, q := range e.questions {
			if a, ok := e.answers[q.ID]; ok && a == q.Answer.Option {
				expected++
			}
		}
		if e.score != expected {
			t.Fatalf("After answer %d: score %d, recount %d", i, e.score, expected)
		}

		if err := e.Next(); err != nil {
			t.Fatalf("Next %d failed: %v", i, err)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	testCases := []struct {
		seconds  int
		expected string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59, "00:59"},
		{60, "01:00"},
		{65, "01:05"},
		{3599, "59:59"},
	}
	for _, tc := range testCases {
		if got := FormatElapsed(tc.seconds); got != tc.expected {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tc.seconds, got, tc.expected)
		}
	}
}

func TestTickerDrivesElapsed(t *testing.T) {
	e := New(makeData(1), nil, &Config{TickInterval: 5 * time.Millisecond})
	defer e.Close()
	if err := e.Start(false, 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.View().Elapsed >= 2 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("Ticker never advanced elapsed time")
}
