package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tma-tanlov/backend/internal/domain/hemis"
	"github.com/tma-tanlov/backend/internal/domain/model"
	"github.com/tma-tanlov/backend/pkg/apperr"
)

// StudentRepository доступ к студентам, справочникам и реестру отстранённых
type StudentRepository interface {
	UpsertStudent(ctx context.Context, s *model.Student) (*model.Student, error)
	GetStudentByID(ctx context.Context, studentID int) (*model.Student, error)
	GetStudentByHemisID(ctx context.Context, hemisID string) (*model.Student, error)
	GetOrCreateLevel(ctx context.Context, code, name string) (int, error)
	GetLevelByID(ctx context.Context, levelID int) (*model.Level, error)
	GetOrCreateFaculty(ctx context.Context, hemisID *int, name string, code *string) (int, error)
	GetFacultyByID(ctx context.Context, facultyID int) (*model.Faculty, error)
	ReplaceGPARecords(ctx context.Context, studentID int, records []model.GPARecord) error
	GetGPARecords(ctx context.Context, studentID int) ([]model.GPARecord, error)
	GetDisqualificationReason(ctx context.Context, hemisID string) (string, bool, error)
	AddDisqualified(ctx context.Context, hemisID, reason string) error
	RemoveDisqualified(ctx context.Context, hemisID string) error
	ListDisqualified(ctx context.Context) ([]model.DisqualifiedStudent, error)
}

// HemisGateway операции HEMIS API, используемые при логине
type HemisGateway interface {
	Login(ctx context.Context, login, password string) (string, error)
	Me(ctx context.Context, token string) (*hemis.Account, error)
	GPAList(ctx context.Context, token string) ([]hemis.GPAEntry, error)
	Contract(ctx context.Context, token string) (*hemis.Contract, error)
}

// StudentService синхронизирует студентов из HEMIS и ведёт реестр отстранённых
type StudentService struct {
	repo  StudentRepository
	hemis HemisGateway
}

// NewStudentService создает новый экземпляр StudentService
func NewStudentService(repo StudentRepository, gateway HemisGateway) *StudentService {
	return &StudentService{repo: repo, hemis: gateway}
}

// Login авторизует студента в HEMIS его учётными данными и синхронизирует
// карточку, справочники и записи GPA. Возвращает студента и HEMIS-токен.
func (s *StudentService) Login(ctx context.Context, login, password string) (*model.Student, string, error) {
	token, err := s.hemis.Login(ctx, login, password)
	if err != nil {
		if errors.Is(err, hemis.ErrInvalidCredentials) {
			return nil, "", apperr.Forbidden("login yoki parol noto'g'ri")
		}
		return nil, "", fmt.Errorf("failed to login to hemis: %w", err)
	}

	account, err := s.hemis.Me(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch hemis account: %w", err)
	}

	student, err := s.syncStudent(ctx, account)
	if err != nil {
		return nil, "", err
	}

	entries, err := s.hemis.GPAList(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch gpa list: %w", err)
	}
	records := make([]model.GPARecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, model.GPARecord{
			StudentID:     student.ID,
			EducationYear: e.EducationYear.Name,
			Level:         e.Level.Name,
			GPA:           e.GPA,
			CreditSum:     e.CreditSum,
			Subjects:      e.Subjects,
			DebtSubjects:  e.DebtSubjects,
			CanTransfer:   e.CanTransfer,
			Method:        e.Method,
		})
	}
	if err := s.repo.ReplaceGPARecords(ctx, student.ID, records); err != nil {
		return nil, "", err
	}
	return student, token, nil
}

func (s *StudentService) syncStudent(ctx context.Context, account *hemis.Account) (*model.Student, error) {
	levelID, err := s.repo.GetOrCreateLevel(ctx, account.Level.Code, account.Level.Name)
	if err != nil {
		return nil, err
	}
	facultyID, err := s.repo.GetOrCreateFaculty(ctx, account.Faculty.ID, account.Faculty.Name, account.Faculty.Code)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		HemisID:   account.StudentIDNumber,
		FullName:  account.FullName,
		ShortName: account.ShortName,
		Email:     account.Email,
		Phone:     account.Phone,
		Image:     account.Image,
		Gender:    account.Gender.Name,
		Address:   account.Address,
		Univer:    account.University,
		FacultyID: &facultyID,
		Group:     account.Group.Name,
		LevelID:   &levelID,
	}
	if account.BirthDate > 0 {
		birthDate := time.Unix(account.BirthDate, 0).UTC()
		student.BirthDate = &birthDate
	}
	// Toifa выставляется импортом реестра социальной защиты, не логином
	if existing, err := s.repo.GetStudentByHemisID(ctx, account.StudentIDNumber); err != nil {
		return nil, err
	} else if existing != nil {
		student.Toifa = existing.Toifa
	}

	return s.repo.UpsertStudent(ctx, student)
}

// Student получает студента по ID
func (s *StudentService) Student(ctx context.Context, studentID int) (*model.Student, error) {
	student, err := s.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apperr.NotFound("student topilmadi")
	}
	return student, nil
}

// StudentByHemisID получает студента по номеру студенческого билета
func (s *StudentService) StudentByHemisID(ctx context.Context, hemisID string) (*model.Student, error) {
	student, err := s.repo.GetStudentByHemisID(ctx, hemisID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apperr.NotFound("student topilmadi")
	}
	return student, nil
}

// GPARecords получает записи GPA студента
func (s *StudentService) GPARecords(ctx context.Context, studentID int) ([]model.GPARecord, error) {
	return s.repo.GetGPARecords(ctx, studentID)
}

// Contract получает договор студента из HEMIS по его токену
func (s *StudentService) Contract(ctx context.Context, hemisToken string, studentID int) (*model.ContractInfo, error) {
	contract, err := s.hemis.Contract(ctx, hemisToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contract: %w", err)
	}

	info := &model.ContractInfo{
		StudentID:      studentID,
		ContractNumber: contract.ContractNumber,
		EduSpeciality:  contract.EduSpeciality,
		EduYear:        contract.EduYear,
		EduForm:        contract.EduForm,
		ContractType:   contract.ContractType,
		PDFLink:        contract.PDFLink,
		ContractSum:    contract.ContractSum,
		GPA:            contract.GPA,
		Debit:          contract.Debit,
		Credit:         contract.Credit,
	}
	if contract.ContractDate != "" {
		if date, err := time.Parse("2006-01-02", contract.ContractDate); err == nil {
			info.ContractDate = &date
		}
	}
	return info, nil
}

// DisqualificationReason проверяет студента по реестру отстранённых
func (s *StudentService) DisqualificationReason(ctx context.Context, hemisID string) (string, bool, error) {
	return s.repo.GetDisqualificationReason(ctx, hemisID)
}

// Disqualify вносит студента в реестр отстранённых
func (s *StudentService) Disqualify(ctx context.Context, hemisID, reason string) error {
	if hemisID == "" {
		return apperr.BadRequest("hemis_id ko'rsatilmagan")
	}
	if reason == "" {
		return apperr.BadRequest("sabab ko'rsatilmagan")
	}
	return s.repo.AddDisqualified(ctx, hemisID, reason)
}

// Requalify убирает студента из реестра отстранённых
func (s *StudentService) Requalify(ctx context.Context, hemisID string) error {
	return s.repo.RemoveDisqualified(ctx, hemisID)
}

// Disqualified возвращает весь реестр отстранённых
func (s *StudentService) Disqualified(ctx context.Context) ([]model.DisqualifiedStudent, error) {
	return s.repo.ListDisqualified(ctx)
}

// Faculty получает факультет по ID
func (s *StudentService) Faculty(ctx context.Context, facultyID int) (*model.Faculty, error) {
	return s.repo.GetFacultyByID(ctx, facultyID)
}

// Level получает курс по ID
func (s *StudentService) Level(ctx context.Context, levelID int) (*model.Level, error) {
	return s.repo.GetLevelByID(ctx, levelID)
}
