package dto

// OptionView вариант ответа без флага правильности. Порядок вариантов
// перемешивается при каждой отдаче.
type OptionView struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// QuestionView вопрос, отдаваемый студенту во время теста
type QuestionView struct {
	ID      int          `json:"id"`
	Text    string       `json:"text"`
	Options []OptionView `json:"options"`
}

// StartTestResponse ответ на запуск (или возобновление) теста
type StartTestResponse struct {
	SessionID        int           `json:"session_id"`
	TotalQuestions   int           `json:"total_questions"`
	RemainingSeconds int           `json:"remaining_seconds"`
	FirstQuestion    *QuestionView `json:"first_question,omitempty"`
	Resume           bool          `json:"resume"`
	Finished         bool          `json:"finished"`
	Result           *TestResult   `json:"result,omitempty"`
}

// SessionStateResponse состояние сессии для resume / next question.
// Если Finished == true, вопрос не отдаётся и заполнен Result.
type SessionStateResponse struct {
	SessionID        int           `json:"session_id"`
	Finished         bool          `json:"finished"`
	Question         *QuestionView `json:"question,omitempty"`
	Position         int           `json:"position,omitempty"` // номер вопроса, с единицы
	TotalQuestions   int           `json:"total_questions"`
	RemainingSeconds int           `json:"remaining_seconds"`
	Result           *TestResult   `json:"result,omitempty"`
}

// TestResult итог завершённой сессии
type TestResult struct {
	SessionID      int     `json:"session_id"`
	Score          float64 `json:"score"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalQuestions int     `json:"total_questions"`
	FinishedAt     string  `json:"finished_at"`
}
