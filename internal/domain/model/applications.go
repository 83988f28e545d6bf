package model

import "time"

// Section раздел конкурса, объединяет направления
type Section struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Типы направлений. Выбор стратегии оценки делается по этому полю,
// а не по названию направления.
const (
	DirectionFile  = "file"  // балл выставляет комиссия по загруженным файлам
	DirectionGPA   = "gpa"   // балл считается из GPA по таблице соответствия
	DirectionTest  = "test"  // балл берётся из завершённой тестовой сессии
	DirectionToifa = "toifa" // членство в реестре социальной защиты
)

// Direction направление конкурса внутри раздела
type Direction struct {
	ID          int     `json:"id"`
	SectionID   int     `json:"section_id"`
	Name        string  `json:"name"`
	Kind        string  `json:"direction_type"`
	RequireFile bool    `json:"require_file"`
	TestID      *int    `json:"test_id,omitempty"` // только для Kind == "test"
	MinScore    float64 `json:"min_score"`
	MaxScore    float64 `json:"max_score"`
}

// Типы доступа к конкурсу
const (
	AccessUniversal   = "universal"    // все студенты
	AccessMinGPA      = "min_gpa"      // порог GPA
	AccessSpecialList = "special_list" // только студенты из отдельного списка
	AccessMaxsus      = "maxsus"       // только студенты из реестра соцзащиты
)

// ApplicationType тип конкурса (стипендия, грант и т.д.) с окном подачи
type ApplicationType struct {
	ID         int        `json:"id"`
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	Subtitle   *string    `json:"subtitle,omitempty"`
	MinGPA     *float64   `json:"min_gpa,omitempty"`
	AccessType string     `json:"access_type"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
}

// IsActive открыто ли окно подачи заявок на момент now
func (t *ApplicationType) IsActive(now time.Time) bool {
	if t.StartTime != nil && now.Before(*t.StartTime) {
		return false
	}
	if t.EndTime != nil && now.After(*t.EndTime) {
		return false
	}
	return true
}

// Статусы заявки
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Application заявка студента на тип конкурса
type Application struct {
	ID                int       `json:"id"`
	StudentID         int       `json:"student_id"`
	ApplicationTypeID int       `json:"application_type_id"`
	SectionID         *int      `json:"section_id,omitempty"`
	Comment           string    `json:"comment"`
	Status            string    `json:"status"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

// ApplicationItem позиция заявки по одному направлению.
// Уникальна в паре (application, direction) — повторная подача отклоняется.
type ApplicationItem struct {
	ID              int      `json:"id"`
	ApplicationID   int      `json:"application_id"`
	DirectionID     int      `json:"direction_id"`
	Title           string   `json:"title"`
	StudentComment  string   `json:"student_comment"`
	ReviewerComment *string  `json:"reviewer_comment,omitempty"`
	GPA             *float64 `json:"gpa,omitempty"`
	GPAScore        *float64 `json:"gpa_score,omitempty"`
	TestResult      *float64 `json:"test_result,omitempty"`
}

// ApplicationFile подтверждающий документ позиции заявки
type ApplicationFile struct {
	ID         int       `json:"id"`
	ItemID     int       `json:"item_id"`
	Path       string    `json:"path"`
	Comment    string    `json:"comment"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Score балл комиссии. Не более одного балла на позицию заявки.
type Score struct {
	ID         int       `json:"id"`
	ItemID     int       `json:"item_id"`
	ReviewerID *int      `json:"reviewer_id,omitempty"`
	Value      float64   `json:"value"`
	Note       string    `json:"note"`
	ScoredAt   time.Time `json:"scored_at"`
}
