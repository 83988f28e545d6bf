package model

import "time"

// Test определение теста: сколько вопросов выдаётся и сколько минут отводится
type Test struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	QuestionCount int        `json:"question_count"`
	TimeLimit     int        `json:"time_limit"` // в минутах
	StartTime     *time.Time `json:"start_time,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Question вопрос теста. CorrectOption хранит букву правильного варианта
// ("A".."D") параллельно с флагом Option.IsCorrect; при проверке ответа
// авторитетен только флаг варианта.
type Question struct {
	ID            int    `json:"id"`
	TestID        int    `json:"test_id"`
	Text          string `json:"text"`
	CorrectOption string `json:"correct_option"`
}

// Option вариант ответа на вопрос
type Option struct {
	ID         int    `json:"id"`
	QuestionID int    `json:"question_id"`
	Label      string `json:"label"` // "A", "B", "C", "D"
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuestionDraft разобранный вопрос для импорта банка из TXT-файла
type QuestionDraft struct {
	Text          string
	CorrectOption string
	Options       []Option
}
