package model

import "time"

// Student карточка студента, синхронизированная из HEMIS при логине
type Student struct {
	ID        int        `json:"id"`
	HemisID   string     `json:"student_id_number"`
	FullName  string     `json:"full_name"`
	ShortName string     `json:"short_name"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Image     *string    `json:"image,omitempty"`
	Gender    string     `json:"gender"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Address   string     `json:"address"`
	Univer    string     `json:"university"`
	FacultyID *int       `json:"faculty_id,omitempty"`
	Group     string     `json:"group"`
	LevelID   *int       `json:"level_id,omitempty"`
	Toifa     bool       `json:"toifa"` // состоит в реестре социальной защиты
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// GPARecord запись GPA за учебный год (из HEMIS gpa-list)
type GPARecord struct {
	ID            int       `json:"id"`
	StudentID     int       `json:"student_id"`
	EducationYear string    `json:"education_year"`
	Level         string    `json:"level"`
	GPA           string    `json:"gpa"`
	CreditSum     float64   `json:"credit_sum"`
	Subjects      int       `json:"subjects"`
	DebtSubjects  int       `json:"debt_subjects"`
	CanTransfer   bool      `json:"can_transfer"`
	Method        string    `json:"method"`
	CreatedAt     time.Time `json:"created_at"`
}

// ContractInfo контракт студента (из HEMIS student/contract)
type ContractInfo struct {
	ID             int        `json:"id"`
	StudentID      int        `json:"student_id"`
	ContractNumber string     `json:"contract_number"`
	ContractDate   *time.Time `json:"contract_date,omitempty"`
	EduSpeciality  string     `json:"edu_speciality"`
	EduYear        string     `json:"edu_year"`
	EduForm        string     `json:"edu_form"`
	ContractType   string     `json:"contract_type"`
	PDFLink        string     `json:"pdf_link"`
	ContractSum    int64      `json:"contract_sum"`
	GPA            *float64   `json:"gpa,omitempty"`
	Debit          *int64     `json:"debit,omitempty"`
	Credit         *int64     `json:"credit,omitempty"`
}

// DisqualifiedStudent запись реестра отстранённых студентов (odob-axloq).
// Наличие записи блокирует подачу заявок и запуск тестов.
type DisqualifiedStudent struct {
	ID      int    `json:"id"`
	HemisID string `json:"hemis_id"`
	Reason  string `json:"sabab"`
}
