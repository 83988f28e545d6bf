package service

import (
	"context"
	"strconv"
	"time"

	"github.com/tma-tanlov/backend/internal/domain/dto"
	"github.com/tma-tanlov/backend/internal/domain/model"
	"github.com/tma-tanlov/backend/pkg/apperr"
)

// ApplicationRepository доступ к конкурсам, заявкам и баллам
type ApplicationRepository interface {
	GetSections(ctx context.Context) ([]model.Section, error)
	GetDirectionsBySection(ctx context.Context, sectionID int) ([]model.Direction, error)
	GetDirectionByID(ctx context.Context, directionID int) (*model.Direction, error)
	GetApplicationTypes(ctx context.Context) ([]model.ApplicationType, error)
	GetApplicationTypeByKey(ctx context.Context, key string) (*model.ApplicationType, error)
	IsInSpecialList(ctx context.Context, typeID int, hemisID string) (bool, error)
	CreateApplicationWithItems(ctx context.Context, studentID, typeID int, sectionID *int, comment string, items []model.ApplicationItem) (*model.Application, bool, error)
	GetApplicationByStudentAndType(ctx context.Context, studentID, typeID int) (*model.Application, error)
	GetApplicationByID(ctx context.Context, applicationID int) (*model.Application, error)
	GetApplicationsByStudent(ctx context.Context, studentID int) ([]model.Application, error)
	GetApplicationsByType(ctx context.Context, typeID int) ([]model.Application, error)
	UpdateApplicationStatus(ctx context.Context, applicationID int, status string) error
	GetItemByID(ctx context.Context, itemID int) (*model.ApplicationItem, error)
	GetItemsByApplication(ctx context.Context, applicationID int) ([]model.ApplicationItem, error)
	AddFile(ctx context.Context, itemID int, path, comment string) error
	GetFilesByItem(ctx context.Context, itemID int) ([]model.ApplicationFile, error)
	UpsertScore(ctx context.Context, itemID int, reviewerID *int, value float64, note string) error
	GetScoreByItem(ctx context.Context, itemID int) (*model.Score, error)
	Leaderboard(ctx context.Context, typeID int) ([]dto.LeaderboardRow, error)
}

// StudentDirectory данные студентов, нужные при подаче и обзоре заявок
type StudentDirectory interface {
	Student(ctx context.Context, studentID int) (*model.Student, error)
	StudentByHemisID(ctx context.Context, hemisID string) (*model.Student, error)
	GPARecords(ctx context.Context, studentID int) ([]model.GPARecord, error)
	DisqualificationReason(ctx context.Context, hemisID string) (string, bool, error)
}

// TestResultSource баллы завершённых тестовых сессий студента
type TestResultSource interface {
	ResultForStudent(ctx context.Context, studentID, testID int) (*float64, error)
	StudentResults(ctx context.Context, studentID int) ([]dto.TestResult, error)
}

// ApplicationService ведёт заявки: подача с проверкой допуска, позиции по
// направлениям, баллы комиссии и рейтинг
type ApplicationService struct {
	repo     ApplicationRepository
	students StudentDirectory
	tests    TestResultSource
	now      func() time.Time
}

// NewApplicationService создает новый экземпляр ApplicationService
func NewApplicationService(repo ApplicationRepository, students StudentDirectory, tests TestResultSource) *ApplicationService {
	return &ApplicationService{repo: repo, students: students, tests: tests, now: time.Now}
}

// Sections возвращает разделы конкурса
func (s *ApplicationService) Sections(ctx context.Context) ([]model.Section, error) {
	return s.repo.GetSections(ctx)
}

// Directions возвращает направления раздела
func (s *ApplicationService) Directions(ctx context.Context, sectionID int) ([]model.Direction, error) {
	return s.repo.GetDirectionsBySection(ctx, sectionID)
}

// ApplicationTypes возвращает типы конкурсов
func (s *ApplicationService) ApplicationTypes(ctx context.Context) ([]model.ApplicationType, error) {
	return s.repo.GetApplicationTypes(ctx)
}

// SubmitItemInput позиция подаваемой заявки
type SubmitItemInput struct {
	DirectionID int    `json:"direction_id"`
	Title       string `json:"title"`
	Comment     string `json:"comment"`
}

// SubmitApplication подаёт заявку студента на тип конкурса. Повторная подача
// на тот же тип или то же направление отклоняется, допуск проверяется по
// реестру отстранённых и типу доступа конкурса. Позиции проверяются до записи,
// заявка с позициями создаётся одной транзакцией: ошибка по любой позиции
// не оставляет частичной заявки.
func (s *ApplicationService) SubmitApplication(ctx context.Context, studentID int, typeKey string, sectionID *int, comment string, items []SubmitItemInput) (*dto.ApplicationView, error) {
	student, err := s.students.Student(ctx, studentID)
	if err != nil {
		return nil, err
	}

	reason, banned, err := s.students.DisqualificationReason(ctx, student.HemisID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, apperr.Forbidden("Siz tanlovda qatnasha olmaysiz: " + reason)
	}

	appType, err := s.repo.GetApplicationTypeByKey(ctx, typeKey)
	if err != nil {
		return nil, err
	}
	if appType == nil {
		return nil, apperr.NotFound("konkurs turi topilmadi")
	}
	if !appType.IsActive(s.now()) {
		return nil, apperr.Forbidden("ariza topshirish muddati yopiq")
	}
	if err := s.checkAccess(ctx, appType, student); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.BadRequest("arizada kamida bitta yo'nalish bo'lishi kerak")
	}

	seen := make(map[int]bool, len(items))
	rows := make([]model.ApplicationItem, 0, len(items))
	for _, input := range items {
		if seen[input.DirectionID] {
			return nil, apperr.BadRequest("bu yo'nalishga ariza allaqachon topshirilgan")
		}
		seen[input.DirectionID] = true

		item, err := s.buildItem(ctx, student, input)
		if err != nil {
			return nil, err
		}
		rows = append(rows, *item)
	}

	application, created, err := s.repo.CreateApplicationWithItems(ctx, studentID, appType.ID, sectionID, comment, rows)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, apperr.BadRequest("bu konkursga ariza allaqachon topshirilgan")
	}
	return s.applicationView(ctx, application, student, appType.Key)
}

// checkAccess проверяет тип доступа конкурса для студента
func (s *ApplicationService) checkAccess(ctx context.Context, appType *model.ApplicationType, student *model.Student) error {
	switch appType.AccessType {
	case model.AccessUniversal:
		return nil
	case model.AccessMinGPA:
		if appType.MinGPA == nil {
			return nil
		}
		gpa, err := s.latestGPA(ctx, student.ID)
		if err != nil {
			return err
		}
		if gpa == nil || *gpa < *appType.MinGPA {
			return apperr.Forbidden("GPA talab qilingan darajadan past")
		}
		return nil
	case model.AccessSpecialList:
		listed, err := s.repo.IsInSpecialList(ctx, appType.ID, student.HemisID)
		if err != nil {
			return err
		}
		if !listed {
			return apperr.Forbidden("siz ushbu konkurs ro'yxatida yo'qsiz")
		}
		return nil
	case model.AccessMaxsus:
		if !student.Toifa {
			return apperr.Forbidden("konkurs faqat ijtimoiy himoya reestridagi talabalar uchun")
		}
		return nil
	default:
		return nil
	}
}

// buildItem собирает позицию без записи, заполняя балл по типу направления:
// GPA пересчитывается по таблице, результат теста берётся из завершённой сессии
func (s *ApplicationService) buildItem(ctx context.Context, student *model.Student, input SubmitItemInput) (*model.ApplicationItem, error) {
	direction, err := s.repo.GetDirectionByID(ctx, input.DirectionID)
	if err != nil {
		return nil, err
	}
	if direction == nil {
		return nil, apperr.NotFound("yo'nalish topilmadi")
	}

	item := &model.ApplicationItem{
		DirectionID:    direction.ID,
		Title:          input.Title,
		StudentComment: input.Comment,
	}

	switch direction.Kind {
	case model.DirectionGPA:
		gpa, err := s.latestGPA(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		if gpa != nil {
			score := GPAScore(*gpa)
			item.GPA = gpa
			item.GPAScore = &score
		}
	case model.DirectionTest:
		if direction.TestID != nil {
			result, err := s.tests.ResultForStudent(ctx, student.ID, *direction.TestID)
			if err != nil {
				return nil, err
			}
			item.TestResult = result
		}
	case model.DirectionToifa:
		if !student.Toifa {
			return nil, apperr.Forbidden("yo'nalish faqat ijtimoiy himoya reestridagi talabalar uchun")
		}
	}
	return item, nil
}

// latestGPA свежая запись GPA студента как число
func (s *ApplicationService) latestGPA(ctx context.Context, studentID int) (*float64, error) {
	records, err := s.students.GPARecords(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	gpa, err := strconv.ParseFloat(records[0].GPA, 64)
	if err != nil {
		return nil, nil
	}
	return &gpa, nil
}

// AttachFile прикрепляет документ к позиции заявки студента
func (s *ApplicationService) AttachFile(ctx context.Context, studentID, itemID int, path, comment string) error {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.NotFound("ariza pozitsiyasi topilmadi")
	}
	application, err := s.repo.GetApplicationByID(ctx, item.ApplicationID)
	if err != nil {
		return err
	}
	if application == nil || application.StudentID != studentID {
		return apperr.Forbidden("ariza sizga tegishli emas")
	}
	return s.repo.AddFile(ctx, itemID, path, comment)
}

// ScoreItem выставляет балл комиссии по позиции заявки в пределах
// направления и помечает заявку рассмотренной
func (s *ApplicationService) ScoreItem(ctx context.Context, reviewerID *int, itemID int, value float64, note string) error {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.NotFound("ariza pozitsiyasi topilmadi")
	}
	direction, err := s.repo.GetDirectionByID(ctx, item.DirectionID)
	if err != nil {
		return err
	}
	if direction != nil && (value < direction.MinScore || value > direction.MaxScore) {
		return apperr.BadRequest("ball yo'nalish chegarasidan tashqarida")
	}

	if err := s.repo.UpsertScore(ctx, itemID, reviewerID, value, note); err != nil {
		return err
	}
	return s.repo.UpdateApplicationStatus(ctx, item.ApplicationID, model.StatusReviewed)
}

// StudentApplications возвращает заявки студента с позициями и баллами
func (s *ApplicationService) StudentApplications(ctx context.Context, studentID int) ([]dto.ApplicationView, error) {
	student, err := s.students.Student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	applications, err := s.repo.GetApplicationsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.ApplicationView, 0, len(applications))
	for i := range applications {
		view, err := s.applicationView(ctx, &applications[i], student, "")
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// ApplicationsForReview возвращает заявки на тип конкурса для комиссии
func (s *ApplicationService) ApplicationsForReview(ctx context.Context, typeKey string) ([]dto.ApplicationView, error) {
	appType, err := s.repo.GetApplicationTypeByKey(ctx, typeKey)
	if err != nil {
		return nil, err
	}
	if appType == nil {
		return nil, apperr.NotFound("konkurs turi topilmadi")
	}
	applications, err := s.repo.GetApplicationsByType(ctx, appType.ID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.ApplicationView, 0, len(applications))
	for i := range applications {
		student, err := s.students.Student(ctx, applications[i].StudentID)
		if err != nil {
			return nil, err
		}
		view, err := s.applicationView(ctx, &applications[i], student, appType.Key)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// Leaderboard возвращает рейтинг студентов по типу конкурса
func (s *ApplicationService) Leaderboard(ctx context.Context, typeKey string) ([]dto.LeaderboardRow, error) {
	appType, err := s.repo.GetApplicationTypeByKey(ctx, typeKey)
	if err != nil {
		return nil, err
	}
	if appType == nil {
		return nil, apperr.NotFound("konkurs turi topilmadi")
	}
	return s.repo.Leaderboard(ctx, appType.ID)
}

// ResultSummary собирает сводку для Telegram-бота: заявки с баллами и
// результаты тестов студента по номеру HEMIS
func (s *ApplicationService) ResultSummary(ctx context.Context, hemisID string) (*dto.StudentResultSummary, error) {
	student, err := s.students.StudentByHemisID(ctx, hemisID)
	if err != nil {
		return nil, err
	}
	applications, err := s.StudentApplications(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	testResults, err := s.tests.StudentResults(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	return &dto.StudentResultSummary{
		FullName:     student.FullName,
		HemisID:      student.HemisID,
		Applications: applications,
		TestResults:  testResults,
	}, nil
}

func (s *ApplicationService) applicationView(ctx context.Context, application *model.Application, student *model.Student, typeKey string) (*dto.ApplicationView, error) {
	items, err := s.repo.GetItemsByApplication(ctx, application.ID)
	if err != nil {
		return nil, err
	}

	itemViews := make([]dto.ApplicationItemView, 0, len(items))
	for _, item := range items {
		view := dto.ApplicationItemView{
			ItemID:         item.ID,
			DirectionID:    item.DirectionID,
			StudentComment: item.StudentComment,
		}
		direction, err := s.repo.GetDirectionByID(ctx, item.DirectionID)
		if err != nil {
			return nil, err
		}
		if direction != nil {
			view.DirectionName = direction.Name
			view.DirectionKind = direction.Kind
		}

		// Балл позиции: оценка комиссии, иначе GPA-балл или результат теста
		switch {
		case item.GPAScore != nil:
			view.Score = item.GPAScore
		case item.TestResult != nil:
			view.Score = item.TestResult
		}
		score, err := s.repo.GetScoreByItem(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		if score != nil {
			view.Score = &score.Value
			view.ScoreNote = score.Note
		}

		files, err := s.repo.GetFilesByItem(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			view.Files = append(view.Files, f.Path)
		}
		itemViews = append(itemViews, view)
	}

	return &dto.ApplicationView{
		ApplicationID: application.ID,
		StudentID:     student.ID,
		StudentName:   student.FullName,
		HemisID:       student.HemisID,
		TypeKey:       typeKey,
		Status:        application.Status,
		SubmittedAt:   application.SubmittedAt.Format(time.RFC3339),
		Comment:       application.Comment,
		Items:         itemViews,
	}, nil
}
