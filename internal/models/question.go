package models

// Option is one of the four fixed choice labels.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// OptionLabels lists every valid label in display order.
var OptionLabels = []Option{OptionA, OptionB, OptionC, OptionD}

// Valid reports whether o is one of the four known labels.
func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

type Choice struct {
	Option Option `bson:"option" json:"option"`
	Text   string `bson:"text" json:"text"`
}

// Answer wraps the correct option label, matching the dataset shape.
type Answer struct {
	Option Option `bson:"option" json:"option"`
}

type Question struct {
	ID          int      `bson:"_id" json:"id"`
	Prompt      string   `bson:"question" json:"question"`
	Choices     []Choice `bson:"choices" json:"choices"`
	Answer      Answer   `bson:"answer" json:"answer"`
	Explanation string   `bson:"explanation" json:"explanation"`
}

// QuizData is the static dataset consumed once at startup.
type QuizData struct {
	Title         string     `json:"title"`
	QuestionCount int        `json:"question_count"`
	Questions     []Question `json:"questions"`
}
