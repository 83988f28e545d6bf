package service

import (
	"context"
	"testing"
	"time"

	"github.com/tma-tanlov/backend/internal/domain/dto"
	"github.com/tma-tanlov/backend/internal/domain/model"
	"github.com/tma-tanlov/backend/pkg/apperr"
)

type fakeAppRepo struct {
	types       map[string]*model.ApplicationType
	directions  map[int]*model.Direction
	specialList map[string]bool
	apps        map[int]*model.Application
	items       map[int]*model.ApplicationItem
	scores      map[int]*model.Score
	nextID      int
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{
		types:       make(map[string]*model.ApplicationType),
		directions:  make(map[int]*model.Direction),
		specialList: make(map[string]bool),
		apps:        make(map[int]*model.Application),
		items:       make(map[int]*model.ApplicationItem),
		scores:      make(map[int]*model.Score),
		nextID:      1,
	}
}

func (f *fakeAppRepo) id() int {
	f.nextID++
	return f.nextID - 1
}

func (f *fakeAppRepo) GetSections(_ context.Context) ([]model.Section, error) { return nil, nil }

func (f *fakeAppRepo) GetDirectionsBySection(_ context.Context, _ int) ([]model.Direction, error) {
	return nil, nil
}

func (f *fakeAppRepo) GetDirectionByID(_ context.Context, directionID int) (*model.Direction, error) {
	return f.directions[directionID], nil
}

func (f *fakeAppRepo) GetApplicationTypes(_ context.Context) ([]model.ApplicationType, error) {
	var out []model.ApplicationType
	for _, t := range f.types {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeAppRepo) GetApplicationTypeByKey(_ context.Context, key string) (*model.ApplicationType, error) {
	return f.types[key], nil
}

func (f *fakeAppRepo) IsInSpecialList(_ context.Context, _ int, hemisID string) (bool, error) {
	return f.specialList[hemisID], nil
}

func (f *fakeAppRepo) CreateApplicationWithItems(_ context.Context, studentID, typeID int, sectionID *int, comment string, items []model.ApplicationItem) (*model.Application, bool, error) {
	for _, a := range f.apps {
		if a.StudentID == studentID && a.ApplicationTypeID == typeID {
			return nil, false, nil
		}
	}
	app := &model.Application{
		ID: f.id(), StudentID: studentID, ApplicationTypeID: typeID,
		SectionID: sectionID, Comment: comment, Status: model.StatusPending, SubmittedAt: time.Now(),
	}
	f.apps[app.ID] = app
	for _, item := range items {
		saved := item
		saved.ID = f.id()
		saved.ApplicationID = app.ID
		f.items[saved.ID] = &saved
	}
	return app, true, nil
}

func (f *fakeAppRepo) GetApplicationByStudentAndType(_ context.Context, studentID, typeID int) (*model.Application, error) {
	for _, a := range f.apps {
		if a.StudentID == studentID && a.ApplicationTypeID == typeID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAppRepo) GetApplicationByID(_ context.Context, applicationID int) (*model.Application, error) {
	return f.apps[applicationID], nil
}

func (f *fakeAppRepo) GetApplicationsByStudent(_ context.Context, studentID int) ([]model.Application, error) {
	var out []model.Application
	for _, a := range f.apps {
		if a.StudentID == studentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAppRepo) GetApplicationsByType(_ context.Context, typeID int) ([]model.Application, error) {
	var out []model.Application
	for _, a := range f.apps {
		if a.ApplicationTypeID == typeID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAppRepo) UpdateApplicationStatus(_ context.Context, applicationID int, status string) error {
	f.apps[applicationID].Status = status
	return nil
}

func (f *fakeAppRepo) GetItemByID(_ context.Context, itemID int) (*model.ApplicationItem, error) {
	return f.items[itemID], nil
}

func (f *fakeAppRepo) GetItemsByApplication(_ context.Context, applicationID int) ([]model.ApplicationItem, error) {
	var out []model.ApplicationItem
	for _, it := range f.items {
		if it.ApplicationID == applicationID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeAppRepo) AddFile(_ context.Context, _ int, _, _ string) error { return nil }

func (f *fakeAppRepo) GetFilesByItem(_ context.Context, _ int) ([]model.ApplicationFile, error) {
	return nil, nil
}

func (f *fakeAppRepo) UpsertScore(_ context.Context, itemID int, reviewerID *int, value float64, note string) error {
	f.scores[itemID] = &model.Score{ID: f.id(), ItemID: itemID, ReviewerID: reviewerID, Value: value, Note: note}
	return nil
}

func (f *fakeAppRepo) GetScoreByItem(_ context.Context, itemID int) (*model.Score, error) {
	return f.scores[itemID], nil
}

func (f *fakeAppRepo) Leaderboard(_ context.Context, _ int) ([]dto.LeaderboardRow, error) {
	return nil, nil
}

type fakeDirectory struct {
	students map[int]*model.Student
	gpa      map[int][]model.GPARecord
	banned   map[string]string
}

func (f *fakeDirectory) Student(_ context.Context, studentID int) (*model.Student, error) {
	s := f.students[studentID]
	if s == nil {
		return nil, apperr.NotFound("student topilmadi")
	}
	return s, nil
}

func (f *fakeDirectory) StudentByHemisID(_ context.Context, hemisID string) (*model.Student, error) {
	for _, s := range f.students {
		if s.HemisID == hemisID {
			return s, nil
		}
	}
	return nil, apperr.NotFound("student topilmadi")
}

func (f *fakeDirectory) GPARecords(_ context.Context, studentID int) ([]model.GPARecord, error) {
	return f.gpa[studentID], nil
}

func (f *fakeDirectory) DisqualificationReason(_ context.Context, hemisID string) (string, bool, error) {
	reason, ok := f.banned[hemisID]
	return reason, ok, nil
}

type fakeResults struct {
	scores map[int]map[int]float64 // studentID -> testID -> score
}

func (f *fakeResults) ResultForStudent(_ context.Context, studentID, testID int) (*float64, error) {
	if score, ok := f.scores[studentID][testID]; ok {
		return &score, nil
	}
	return nil, nil
}

func (f *fakeResults) StudentResults(_ context.Context, studentID int) ([]dto.TestResult, error) {
	var out []dto.TestResult
	for testID, score := range f.scores[studentID] {
		out = append(out, dto.TestResult{SessionID: testID, Score: score})
	}
	return out, nil
}

type appFixture struct {
	repo *fakeAppRepo
	dir  *fakeDirectory
	svc  *ApplicationService
}

func newAppFixture() *appFixture {
	repo := newFakeAppRepo()
	repo.types["stipendiya"] = &model.ApplicationType{ID: 1, Key: "stipendiya", Name: "Stipendiya", AccessType: model.AccessUniversal}
	repo.directions[10] = &model.Direction{ID: 10, SectionID: 1, Name: "Ilmiy faoliyat", Kind: model.DirectionFile, MinScore: 0, MaxScore: 10}
	repo.directions[11] = &model.Direction{ID: 11, SectionID: 1, Name: "Akademik o'zlashtirish", Kind: model.DirectionGPA}
	testID := 7
	repo.directions[12] = &model.Direction{ID: 12, SectionID: 1, Name: "Fan testi", Kind: model.DirectionTest, TestID: &testID}

	dir := &fakeDirectory{
		students: map[int]*model.Student{
			100: {ID: 100, HemisID: "12345678", FullName: "Aliyev Vali"},
		},
		gpa: map[int][]model.GPARecord{
			100: {{StudentID: 100, EducationYear: "2024-2025", GPA: "4.5"}},
		},
		banned: map[string]string{},
	}
	results := &fakeResults{scores: map[int]map[int]float64{100: {7: 85.5}}}

	svc := NewApplicationService(repo, dir, results)
	svc.now = func() time.Time { return time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC) }
	return &appFixture{repo: repo, dir: dir, svc: svc}
}

func TestSubmitApplicationFillsScores(t *testing.T) {
	fx := newAppFixture()

	view, err := fx.svc.SubmitApplication(context.Background(), 100, "stipendiya", nil, "", []SubmitItemInput{
		{DirectionID: 11},
		{DirectionID: 12},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(view.Items))
	}
	for _, item := range view.Items {
		switch item.DirectionKind {
		case model.DirectionGPA:
			// GPA 4.5 даёт 8.3 по таблице
			if item.Score == nil || *item.Score != 8.3 {
				t.Errorf("gpa item score = %v, want 8.3", item.Score)
			}
		case model.DirectionTest:
			if item.Score == nil || *item.Score != 85.5 {
				t.Errorf("test item score = %v, want 85.5", item.Score)
			}
		}
	}
}

func TestSubmitApplicationDuplicateType(t *testing.T) {
	fx := newAppFixture()
	ctx := context.Background()

	if _, err := fx.svc.SubmitApplication(ctx, 100, "stipendiya", nil, "", []SubmitItemInput{{DirectionID: 10}}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := fx.svc.SubmitApplication(ctx, 100, "stipendiya", nil, "", []SubmitItemInput{{DirectionID: 11}})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("got %v, want bad request for duplicate application", err)
	}
}

func TestSubmitApplicationUnknownDirectionWritesNothing(t *testing.T) {
	fx := newAppFixture()
	ctx := context.Background()

	_, err := fx.svc.SubmitApplication(ctx, 100, "stipendiya", nil, "", []SubmitItemInput{
		{DirectionID: 10},
		{DirectionID: 999},
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("got %v, want not found for unknown direction", err)
	}
	if len(fx.repo.apps) != 0 || len(fx.repo.items) != 0 {
		t.Fatalf("partial write: %d applications, %d items", len(fx.repo.apps), len(fx.repo.items))
	}
	// После исправления позиций заявка подаётся
	if _, err := fx.svc.SubmitApplication(ctx, 100, "stipendiya", nil, "", []SubmitItemInput{{DirectionID: 10}}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
}

func TestSubmitApplicationDuplicateDirection(t *testing.T) {
	fx := newAppFixture()

	_, err := fx.svc.SubmitApplication(context.Background(), 100, "stipendiya", nil, "", []SubmitItemInput{
		{DirectionID: 10},
		{DirectionID: 10},
	})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("got %v, want bad request for duplicate direction", err)
	}
	if len(fx.repo.apps) != 0 || len(fx.repo.items) != 0 {
		t.Fatalf("partial write: %d applications, %d items", len(fx.repo.apps), len(fx.repo.items))
	}
}

func TestSubmitApplicationDisqualified(t *testing.T) {
	fx := newAppFixture()
	fx.dir.banned["12345678"] = "axloqiy qoidabuzarlik"

	_, err := fx.svc.SubmitApplication(context.Background(), 100, "stipendiya", nil, "", []SubmitItemInput{{DirectionID: 10}})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
}

func TestSubmitApplicationClosedWindow(t *testing.T) {
	fx := newAppFixture()
	end := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	fx.repo.types["stipendiya"].EndTime = &end

	_, err := fx.svc.SubmitApplication(context.Background(), 100, "stipendiya", nil, "", []SubmitItemInput{{DirectionID: 10}})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("got %v, want forbidden for closed window", err)
	}
}

func TestSubmitApplicationMinGPA(t *testing.T) {
	fx := newAppFixture()
	minGPA := 4.8
	fx.repo.types["stipendiya"].AccessType = model.AccessMinGPA
	fx.repo.types["stipendiya"].MinGPA = &minGPA

	_, err := fx.svc.SubmitApplication(context.Background(), 100, "stipendiya", nil, "", []SubmitItemInput{{DirectionID: 10}})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("got %v, want forbidden for low gpa", err)
	}
}

func TestScoreItemBounds(t *testing.T) {
	fx := newAppFixture()
	ctx := context.Background()

	view, err := fx.svc.SubmitApplication(ctx, 100, "stipendiya", nil, "", []SubmitItemInput{{DirectionID: 10}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	itemID := view.Items[0].ItemID

	if err := fx.svc.ScoreItem(ctx, nil, itemID, 11, ""); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("got %v, want bad request for score above max", err)
	}
	if err := fx.svc.ScoreItem(ctx, nil, itemID, 7.5, "yaxshi"); err != nil {
		t.Fatalf("score: %v", err)
	}
	if fx.repo.apps[view.ApplicationID].Status != model.StatusReviewed {
		t.Errorf("application status = %q, want reviewed", fx.repo.apps[view.ApplicationID].Status)
	}
	// Повторная оценка перезаписывает балл
	if err := fx.svc.ScoreItem(ctx, nil, itemID, 9, ""); err != nil {
		t.Fatalf("rescore: %v", err)
	}
	if fx.repo.scores[itemID].Value != 9 {
		t.Errorf("score = %v, want 9", fx.repo.scores[itemID].Value)
	}
}
