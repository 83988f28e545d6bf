package model

import "time"

// TestSession одна попытка студента по одному тесту.
// На пару (student, test) существует не более одной сессии.
type TestSession struct {
	ID                   int        `json:"id"`
	StudentID            int        `json:"student_id"`
	TestID               int        `json:"test_id"`
	StartedAt            time.Time  `json:"started_at"`
	FinishedAt           *time.Time `json:"finished_at,omitempty"`
	Score                *float64   `json:"score,omitempty"`
	CorrectAnswers       *int       `json:"correct_answers,omitempty"`
	TotalQuestions       *int       `json:"total_questions,omitempty"`
	CurrentQuestionIndex int        `json:"current_question_index"`
}

// Deadline момент истечения времени сессии для лимита timeLimit (минуты)
func (s *TestSession) Deadline(timeLimit int) time.Time {
	return s.StartedAt.Add(time.Duration(timeLimit) * time.Minute)
}

// IsExpired истекло ли время незавершённой сессии на момент now.
// Завершённая сессия не считается истекшей. Проверка вызывается в начале
// каждой операции над сессией, фоновых таймеров нет.
func (s *TestSession) IsExpired(timeLimit int, now time.Time) bool {
	if s.FinishedAt != nil {
		return false
	}
	return !now.Before(s.Deadline(timeLimit))
}

// RemainingSeconds сколько секунд осталось до дедлайна, не меньше нуля
func (s *TestSession) RemainingSeconds(timeLimit int, now time.Time) int {
	left := s.Deadline(timeLimit).Sub(now)
	if left < 0 {
		return 0
	}
	return int(left.Seconds())
}

// Answer ответ студента на вопрос сессии.
// Не более одного ответа на пару (session, question).
type Answer struct {
	ID               int       `json:"id"`
	SessionID        int       `json:"session_id"`
	QuestionID       int       `json:"question_id"`
	SelectedOptionID int       `json:"selected_option_id"`
	IsCorrect        bool      `json:"is_correct"`
	CreatedAt        time.Time `json:"created_at"`
}
