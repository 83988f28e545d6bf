package dto

// ApplicationItemView позиция заявки с баллом для студента или комиссии
type ApplicationItemView struct {
	ItemID         int      `json:"item_id"`
	DirectionID    int      `json:"direction_id"`
	DirectionName  string   `json:"direction_name"`
	DirectionKind  string   `json:"direction_kind"`
	StudentComment string   `json:"student_comment,omitempty"`
	Files          []string `json:"files,omitempty"`
	Score          *float64 `json:"score,omitempty"`
	ScoreNote      string   `json:"score_note,omitempty"`
}

// ApplicationView заявка целиком
type ApplicationView struct {
	ApplicationID int                   `json:"application_id"`
	StudentID     int                   `json:"student_id"`
	StudentName   string                `json:"student_name"`
	HemisID       string                `json:"hemis_id"`
	TypeKey       string                `json:"type_key"`
	Status        string                `json:"status"`
	SubmittedAt   string                `json:"submitted_at"`
	Comment       string                `json:"comment,omitempty"`
	Items         []ApplicationItemView `json:"items"`
}

// LeaderboardRow строка рейтинга: суммарный балл студента по направлениям
type LeaderboardRow struct {
	Rank      int     `json:"rank"`
	StudentID int     `json:"student_id"`
	HemisID   string  `json:"hemis_id"`
	FullName  string  `json:"full_name"`
	Faculty   string  `json:"faculty"`
	Level     string  `json:"level"`
	Total     float64 `json:"total"`
}

// StudentResultSummary сводка результатов студента для Telegram-бота
type StudentResultSummary struct {
	FullName     string                `json:"full_name"`
	HemisID      string                `json:"hemis_id"`
	Applications []ApplicationView     `json:"applications"`
	TestResults  []TestResult          `json:"test_results"`
	Items        []ApplicationItemView `json:"items,omitempty"`
}
