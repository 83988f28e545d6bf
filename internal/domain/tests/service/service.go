package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/tma-tanlov/backend/internal/domain/dto"
	"github.com/tma-tanlov/backend/internal/domain/model"
	"github.com/tma-tanlov/backend/pkg/apperr"
)

// SessionRepository доступ к тестам, вопросам, сессиям и ответам
type SessionRepository interface {
	GetTestByID(ctx context.Context, testID int) (*model.Test, error)
	GetTests(ctx context.Context) ([]model.Test, error)
	TestAllowsLevel(ctx context.Context, testID, levelID int) (bool, error)
	GetQuestionIDsByTestID(ctx context.Context, testID int) ([]int, error)
	GetQuestionByID(ctx context.Context, questionID int) (*model.Question, error)
	GetOptionsByQuestionID(ctx context.Context, questionID int) ([]model.Option, error)
	GetOptionByID(ctx context.Context, optionID int) (*model.Option, error)
	ImportTest(ctx context.Context, title string, timeLimit int, startTime *time.Time, levelIDs []int, questions []model.QuestionDraft) (int, error)
	CreateSession(ctx context.Context, studentID, testID int, questionIDs []int) (*model.TestSession, bool, error)
	GetSessionByStudentAndTest(ctx context.Context, studentID, testID int) (*model.TestSession, error)
	GetSessionByIDAndStudent(ctx context.Context, sessionID, studentID int) (*model.TestSession, error)
	GetSessionsByStudent(ctx context.Context, studentID int) ([]model.TestSession, error)
	GetSessionQuestionIDs(ctx context.Context, sessionID int) ([]int, error)
	GetAnsweredQuestionIDs(ctx context.Context, sessionID int) ([]int, error)
	InsertAnswer(ctx context.Context, sessionID, questionID, selectedOptionID int, isCorrect bool) (bool, error)
	CountCorrectAnswers(ctx context.Context, sessionID int) (int, error)
	UpdateSessionIndex(ctx context.Context, sessionID, index int) error
	FinishSession(ctx context.Context, sessionID int, finishedAt time.Time, correct, total int, score float64) error
}

// DisqualificationRegistry проверка студента по реестру отстранённых
type DisqualificationRegistry interface {
	DisqualificationReason(ctx context.Context, hemisID string) (string, bool, error)
}

// TestService управляет жизненным циклом тестовой сессии: запуск, выдача
// вопросов, приём ответов и подведение итога. Истечение времени проверяется
// лениво в начале каждой операции.
type TestService struct {
	repo     SessionRepository
	registry DisqualificationRegistry
	now      func() time.Time
}

// NewTestService создает новый экземпляр TestService
func NewTestService(repo SessionRepository, registry DisqualificationRegistry) *TestService {
	return &TestService{repo: repo, registry: registry, now: time.Now}
}

// Tests возвращает список тестов
func (s *TestService) Tests(ctx context.Context) ([]model.Test, error) {
	return s.repo.GetTests(ctx)
}

// ImportQuiz создает тест из разобранного TXT-файла
func (s *TestService) ImportQuiz(ctx context.Context, title string, timeLimit int, startTime *time.Time, levelIDs []int, questions []model.QuestionDraft) (int, error) {
	if title == "" {
		return 0, apperr.BadRequest("test nomi ko'rsatilmagan")
	}
	if timeLimit <= 0 {
		return 0, apperr.BadRequest("test vaqti noto'g'ri")
	}
	if len(questions) == 0 {
		return 0, apperr.BadRequest("faylda savollar topilmadi")
	}
	testID, err := s.repo.ImportTest(ctx, title, timeLimit, startTime, levelIDs, questions)
	if err != nil {
		return 0, fmt.Errorf("failed to import quiz: %w", err)
	}
	return testID, nil
}

// StartTest запускает тест для студента или возвращает состояние существующей
// сессии. Повторный запуск не создаёт вторую сессию: открытая сессия
// возобновляется, завершённая возвращает итог.
func (s *TestService) StartTest(ctx context.Context, student *model.Student, testID int) (*dto.StartTestResponse, error) {
	reason, banned, err := s.registry.DisqualificationReason(ctx, student.HemisID)
	if err != nil {
		return nil, fmt.Errorf("failed to check registry: %w", err)
	}
	if banned {
		return nil, apperr.Forbidden("Siz tanlovda qatnasha olmaysiz: " + reason)
	}

	test, err := s.repo.GetTestByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test == nil {
		return nil, apperr.NotFound("test topilmadi")
	}
	if test.StartTime != nil && s.now().Before(*test.StartTime) {
		return nil, apperr.BadRequest("test hali boshlanmagan")
	}
	if student.LevelID == nil {
		return nil, apperr.Forbidden("bu test sizning kursingiz uchun mo'ljallanmagan")
	}
	allowed, err := s.repo.TestAllowsLevel(ctx, testID, *student.LevelID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("bu test sizning kursingiz uchun mo'ljallanmagan")
	}

	session, err := s.repo.GetSessionByStudentAndTest(ctx, student.ID, testID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session, err = s.openSession(ctx, student.ID, test)
		if err != nil {
			return nil, err
		}
		return s.startResponse(ctx, session, test, false)
	}
	return s.startResponse(ctx, session, test, true)
}

// openSession фиксирует случайную выборку вопросов и создает сессию.
// При гонке двух запусков выигрывает одна вставка, проигравший перечитывает.
func (s *TestService) openSession(ctx context.Context, studentID int, test *model.Test) (*model.TestSession, error) {
	questionIDs, err := s.repo.GetQuestionIDsByTestID(ctx, test.ID)
	if err != nil {
		return nil, err
	}
	if len(questionIDs) < test.QuestionCount {
		return nil, apperr.BadRequest("testda savollar yetarli emas")
	}

	sample := make([]int, len(questionIDs))
	copy(sample, questionIDs)
	rand.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})
	sample = sample[:test.QuestionCount]

	session, created, err := s.repo.CreateSession(ctx, studentID, test.ID, sample)
	if err != nil {
		return nil, err
	}
	if !created {
		session, err = s.repo.GetSessionByStudentAndTest(ctx, studentID, test.ID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, fmt.Errorf("session lost after conflicting insert")
		}
	}
	return session, nil
}

func (s *TestService) startResponse(ctx context.Context, session *model.TestSession, test *model.Test, resume bool) (*dto.StartTestResponse, error) {
	state, err := s.sessionState(ctx, session, test)
	if err != nil {
		return nil, err
	}
	return &dto.StartTestResponse{
		SessionID:        session.ID,
		TotalQuestions:   state.TotalQuestions,
		RemainingSeconds: state.RemainingSeconds,
		FirstQuestion:    state.Question,
		Resume:           resume,
		Finished:         state.Finished,
		Result:           state.Result,
	}, nil
}

// ResumeSession возвращает текущее состояние сессии студента по тесту:
// первый неотвеченный вопрос либо итог, если сессия завершена или истекла
func (s *TestService) ResumeSession(ctx context.Context, studentID, testID int) (*dto.SessionStateResponse, error) {
	session, err := s.repo.GetSessionByStudentAndTest(ctx, studentID, testID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFound("ochiq sessiya topilmadi")
	}
	test, err := s.repo.GetTestByID(ctx, session.TestID)
	if err != nil {
		return nil, err
	}
	return s.sessionState(ctx, session, test)
}

// NextQuestion выдает очередной неотвеченный вопрос сессии.
// Отвеченные вопросы повторно не выдаются.
func (s *TestService) NextQuestion(ctx context.Context, studentID, sessionID int) (*dto.SessionStateResponse, error) {
	session, test, err := s.ownedSession(ctx, studentID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionState(ctx, session, test)
}

// SubmitAnswer принимает ответ на вопрос сессии и возвращает следующее
// состояние. Правильность определяется только флагом выбранного варианта.
func (s *TestService) SubmitAnswer(ctx context.Context, studentID, sessionID, questionID, optionID int) (*dto.SessionStateResponse, error) {
	session, test, err := s.ownedSession(ctx, studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.FinishedAt != nil {
		return nil, apperr.Forbidden("test allaqachon yakunlangan")
	}
	if session.IsExpired(test.TimeLimit, s.now()) {
		if _, err := s.finalize(ctx, session); err != nil {
			return nil, err
		}
		return nil, apperr.Forbidden("test vaqti tugadi")
	}

	sample, err := s.repo.GetSessionQuestionIDs(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if !contains(sample, questionID) {
		return nil, apperr.BadRequest("savol ushbu sessiyaga tegishli emas")
	}

	option, err := s.repo.GetOptionByID(ctx, optionID)
	if err != nil {
		return nil, err
	}
	if option == nil || option.QuestionID != questionID {
		return nil, apperr.BadRequest("variant ushbu savolga tegishli emas")
	}

	inserted, err := s.repo.InsertAnswer(ctx, session.ID, questionID, optionID, option.IsCorrect)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, apperr.BadRequest("bu savolga javob berilgan")
	}

	answered, err := s.repo.GetAnsweredQuestionIDs(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSessionIndex(ctx, session.ID, len(answered)); err != nil {
		return nil, err
	}
	session.CurrentQuestionIndex = len(answered)

	return s.sessionState(ctx, session, test)
}

// FinishTest завершает сессию досрочно. Повторный вызов возвращает
// сохранённый итог без пересчёта.
func (s *TestService) FinishTest(ctx context.Context, studentID, sessionID int) (*dto.TestResult, error) {
	session, _, err := s.ownedSession(ctx, studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.FinishedAt != nil {
		return storedResult(session), nil
	}
	return s.finalize(ctx, session)
}

// ResultForStudent возвращает балл завершённой сессии студента по тесту,
// nil если сессии нет или она не завершена
func (s *TestService) ResultForStudent(ctx context.Context, studentID, testID int) (*float64, error) {
	session, err := s.repo.GetSessionByStudentAndTest(ctx, studentID, testID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.FinishedAt == nil {
		return nil, nil
	}
	return session.Score, nil
}

// StudentResults возвращает итоги завершённых сессий студента
func (s *TestService) StudentResults(ctx context.Context, studentID int) ([]dto.TestResult, error) {
	sessions, err := s.repo.GetSessionsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var results []dto.TestResult
	for i := range sessions {
		if sessions[i].FinishedAt == nil {
			continue
		}
		results = append(results, *storedResult(&sessions[i]))
	}
	return results, nil
}

func (s *TestService) ownedSession(ctx context.Context, studentID, sessionID int) (*model.TestSession, *model.Test, error) {
	session, err := s.repo.GetSessionByIDAndStudent(ctx, sessionID, studentID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, apperr.NotFound("sessiya topilmadi")
	}
	test, err := s.repo.GetTestByID(ctx, session.TestID)
	if err != nil {
		return nil, nil, err
	}
	if test == nil {
		return nil, nil, apperr.NotFound("test topilmadi")
	}
	return session, test, nil
}

// sessionState единая точка выдачи состояния: здесь срабатывает ленивое
// завершение по истечению времени и по исчерпанию вопросов
func (s *TestService) sessionState(ctx context.Context, session *model.TestSession, test *model.Test) (*dto.SessionStateResponse, error) {
	if session.FinishedAt != nil {
		return finishedState(session), nil
	}
	if session.IsExpired(test.TimeLimit, s.now()) {
		if _, err := s.finalize(ctx, session); err != nil {
			return nil, err
		}
		return finishedState(session), nil
	}

	sample, err := s.repo.GetSessionQuestionIDs(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	answered, err := s.repo.GetAnsweredQuestionIDs(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	questionID, ok := firstUnanswered(sample, answered)
	if !ok {
		if _, err := s.finalize(ctx, session); err != nil {
			return nil, err
		}
		return finishedState(session), nil
	}

	view, err := s.questionView(ctx, questionID)
	if err != nil {
		return nil, err
	}
	return &dto.SessionStateResponse{
		SessionID:        session.ID,
		Question:         view,
		Position:         len(answered) + 1,
		TotalQuestions:   len(sample),
		RemainingSeconds: session.RemainingSeconds(test.TimeLimit, s.now()),
	}, nil
}

// finalize подсчитывает итог и закрывает сессию. Неотвеченные вопросы
// считаются неправильными: знаменатель — размер выборки, не число ответов.
func (s *TestService) finalize(ctx context.Context, session *model.TestSession) (*dto.TestResult, error) {
	sample, err := s.repo.GetSessionQuestionIDs(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	correct, err := s.repo.CountCorrectAnswers(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	total := len(sample)
	score := 0.0
	if total > 0 {
		score = math.Round(float64(correct)/float64(total)*100*100) / 100
	}
	finishedAt := s.now()

	if err := s.repo.FinishSession(ctx, session.ID, finishedAt, correct, total, score); err != nil {
		return nil, err
	}
	session.FinishedAt = &finishedAt
	session.Score = &score
	session.CorrectAnswers = &correct
	session.TotalQuestions = &total

	return storedResult(session), nil
}

// questionView отдает вопрос без признаков правильности, порядок вариантов
// перемешивается при каждой выдаче
func (s *TestService) questionView(ctx context.Context, questionID int) (*dto.QuestionView, error) {
	question, err := s.repo.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFound("savol topilmadi")
	}
	options, err := s.repo.GetOptionsByQuestionID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.OptionView, len(options))
	for i, o := range options {
		views[i] = dto.OptionView{ID: o.ID, Label: o.Label, Text: o.Text}
	}
	rand.Shuffle(len(views), func(i, j int) {
		views[i], views[j] = views[j], views[i]
	})
	return &dto.QuestionView{ID: question.ID, Text: question.Text, Options: views}, nil
}

func finishedState(session *model.TestSession) *dto.SessionStateResponse {
	result := storedResult(session)
	total := 0
	if session.TotalQuestions != nil {
		total = *session.TotalQuestions
	}
	return &dto.SessionStateResponse{
		SessionID:      session.ID,
		Finished:       true,
		TotalQuestions: total,
		Result:         result,
	}
}

func storedResult(session *model.TestSession) *dto.TestResult {
	result := &dto.TestResult{SessionID: session.ID}
	if session.Score != nil {
		result.Score = *session.Score
	}
	if session.CorrectAnswers != nil {
		result.CorrectAnswers = *session.CorrectAnswers
	}
	if session.TotalQuestions != nil {
		result.TotalQuestions = *session.TotalQuestions
	}
	if session.FinishedAt != nil {
		result.FinishedAt = session.FinishedAt.Format(time.RFC3339)
	}
	return result
}

func firstUnanswered(sample, answered []int) (int, bool) {
	seen := make(map[int]struct{}, len(answered))
	for _, id := range answered {
		seen[id] = struct{}{}
	}
	for _, id := range sample {
		if _, ok := seen[id]; !ok {
			return id, true
		}
	}
	return 0, false
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
