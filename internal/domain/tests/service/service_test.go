package service

import (
	"context"
	"testing"
	"time"

	"github.com/tma-tanlov/backend/internal/domain/model"
	"github.com/tma-tanlov/backend/pkg/apperr"
)

// fakeRepo хранит всё в памяти, повторяя уникальные индексы базы:
// одна сессия на пару (student, test), один ответ на пару (session, question)
type fakeRepo struct {
	tests            map[int]*model.Test
	testLevels       map[int]map[int]bool
	questions        map[int]*model.Question
	options          map[int]*model.Option
	questionsByTest  map[int][]int
	sessions         map[int]*model.TestSession
	sessionQuestions map[int][]int
	answers          map[int]map[int]model.Answer
	nextID           int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tests:            make(map[int]*model.Test),
		testLevels:       make(map[int]map[int]bool),
		questions:        make(map[int]*model.Question),
		options:          make(map[int]*model.Option),
		questionsByTest:  make(map[int][]int),
		sessions:         make(map[int]*model.TestSession),
		sessionQuestions: make(map[int][]int),
		answers:          make(map[int]map[int]model.Answer),
		nextID:           1,
	}
}

func (f *fakeRepo) id() int {
	f.nextID++
	return f.nextID - 1
}

func (f *fakeRepo) GetTestByID(_ context.Context, testID int) (*model.Test, error) {
	return f.tests[testID], nil
}

func (f *fakeRepo) GetTests(_ context.Context) ([]model.Test, error) {
	var out []model.Test
	for _, t := range f.tests {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeRepo) TestAllowsLevel(_ context.Context, testID, levelID int) (bool, error) {
	return f.testLevels[testID][levelID], nil
}

func (f *fakeRepo) GetQuestionIDsByTestID(_ context.Context, testID int) ([]int, error) {
	return f.questionsByTest[testID], nil
}

func (f *fakeRepo) GetQuestionByID(_ context.Context, questionID int) (*model.Question, error) {
	return f.questions[questionID], nil
}

func (f *fakeRepo) GetOptionsByQuestionID(_ context.Context, questionID int) ([]model.Option, error) {
	var out []model.Option
	for _, o := range f.options {
		if o.QuestionID == questionID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetOptionByID(_ context.Context, optionID int) (*model.Option, error) {
	return f.options[optionID], nil
}

func (f *fakeRepo) ImportTest(_ context.Context, title string, timeLimit int, startTime *time.Time, levelIDs []int, questions []model.QuestionDraft) (int, error) {
	testID := f.id()
	f.tests[testID] = &model.Test{ID: testID, Title: title, QuestionCount: len(questions), TimeLimit: timeLimit, StartTime: startTime}
	f.testLevels[testID] = make(map[int]bool)
	for _, levelID := range levelIDs {
		f.testLevels[testID][levelID] = true
	}
	for _, q := range questions {
		questionID := f.id()
		f.questions[questionID] = &model.Question{ID: questionID, TestID: testID, Text: q.Text, CorrectOption: q.CorrectOption}
		f.questionsByTest[testID] = append(f.questionsByTest[testID], questionID)
		for _, o := range q.Options {
			optionID := f.id()
			f.options[optionID] = &model.Option{ID: optionID, QuestionID: questionID, Label: o.Label, Text: o.Text, IsCorrect: o.IsCorrect}
		}
	}
	return testID, nil
}

func (f *fakeRepo) CreateSession(_ context.Context, studentID, testID int, questionIDs []int) (*model.TestSession, bool, error) {
	for _, s := range f.sessions {
		if s.StudentID == studentID && s.TestID == testID {
			return nil, false, nil
		}
	}
	session := &model.TestSession{ID: f.id(), StudentID: studentID, TestID: testID, StartedAt: time.Now()}
	f.sessions[session.ID] = session
	f.sessionQuestions[session.ID] = append([]int(nil), questionIDs...)
	f.answers[session.ID] = make(map[int]model.Answer)
	return session, true, nil
}

func (f *fakeRepo) GetSessionByStudentAndTest(_ context.Context, studentID, testID int) (*model.TestSession, error) {
	for _, s := range f.sessions {
		if s.StudentID == studentID && s.TestID == testID {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetSessionByIDAndStudent(_ context.Context, sessionID, studentID int) (*model.TestSession, error) {
	s := f.sessions[sessionID]
	if s == nil || s.StudentID != studentID {
		return nil, nil
	}
	return s, nil
}

func (f *fakeRepo) GetSessionsByStudent(_ context.Context, studentID int) ([]model.TestSession, error) {
	var out []model.TestSession
	for _, s := range f.sessions {
		if s.StudentID == studentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetSessionQuestionIDs(_ context.Context, sessionID int) ([]int, error) {
	return f.sessionQuestions[sessionID], nil
}

func (f *fakeRepo) GetAnsweredQuestionIDs(_ context.Context, sessionID int) ([]int, error) {
	var out []int
	for questionID := range f.answers[sessionID] {
		out = append(out, questionID)
	}
	return out, nil
}

func (f *fakeRepo) InsertAnswer(_ context.Context, sessionID, questionID, selectedOptionID int, isCorrect bool) (bool, error) {
	if _, exists := f.answers[sessionID][questionID]; exists {
		return false, nil
	}
	f.answers[sessionID][questionID] = model.Answer{
		ID: f.id(), SessionID: sessionID, QuestionID: questionID,
		SelectedOptionID: selectedOptionID, IsCorrect: isCorrect, CreatedAt: time.Now(),
	}
	return true, nil
}

func (f *fakeRepo) CountCorrectAnswers(_ context.Context, sessionID int) (int, error) {
	count := 0
	for _, a := range f.answers[sessionID] {
		if a.IsCorrect {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) UpdateSessionIndex(_ context.Context, sessionID, index int) error {
	f.sessions[sessionID].CurrentQuestionIndex = index
	return nil
}

func (f *fakeRepo) FinishSession(_ context.Context, sessionID int, finishedAt time.Time, correct, total int, score float64) error {
	s := f.sessions[sessionID]
	if s.FinishedAt != nil {
		return nil
	}
	s.FinishedAt = &finishedAt
	s.CorrectAnswers = &correct
	s.TotalQuestions = &total
	s.Score = &score
	return nil
}

type fakeRegistry struct {
	banned map[string]string
}

func (f *fakeRegistry) DisqualificationReason(_ context.Context, hemisID string) (string, bool, error) {
	reason, ok := f.banned[hemisID]
	return reason, ok, nil
}

type fixture struct {
	repo    *fakeRepo
	svc     *TestService
	clock   *time.Time
	student *model.Student
	testID  int
}

// newFixture готовит тест с банком bankSize вопросов, из которых выдаётся
// questionCount; у каждого вопроса четыре варианта, правильный — "A"
func newFixture(t *testing.T, bankSize, questionCount, timeLimit int) *fixture {
	t.Helper()
	repo := newFakeRepo()

	var drafts []model.QuestionDraft
	for i := 0; i < bankSize; i++ {
		drafts = append(drafts, model.QuestionDraft{
			Text:          "savol",
			CorrectOption: "A",
			Options: []model.Option{
				{Label: "A", Text: "to'g'ri", IsCorrect: true},
				{Label: "B", Text: "xato"},
				{Label: "C", Text: "xato"},
				{Label: "D", Text: "xato"},
			},
		})
	}
	testID, err := repo.ImportTest(context.Background(), "Matematika", timeLimit, nil, []int{1}, drafts)
	if err != nil {
		t.Fatalf("import test: %v", err)
	}
	repo.tests[testID].QuestionCount = questionCount

	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	svc := NewTestService(repo, &fakeRegistry{banned: map[string]string{}})
	svc.now = func() time.Time { return now }

	level := 1
	student := &model.Student{ID: 100, HemisID: "12345678", FullName: "Aliyev Vali", LevelID: &level}
	return &fixture{repo: repo, svc: svc, clock: &now, student: student, testID: testID}
}

// correctOption возвращает ID варианта вопроса с заданной правильностью
func (fx *fixture) option(t *testing.T, questionID int, correct bool) int {
	t.Helper()
	for _, o := range fx.repo.options {
		if o.QuestionID == questionID && o.IsCorrect == correct {
			return o.ID
		}
	}
	t.Fatalf("no option for question %d", questionID)
	return 0
}

func TestStartTestCreatesSingleSession(t *testing.T) {
	fx := newFixture(t, 10, 3, 30)
	ctx := context.Background()

	first, err := fx.svc.StartTest(ctx, fx.student, fx.testID)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	if first.Resume {
		t.Error("first start must not be a resume")
	}
	if first.FirstQuestion == nil {
		t.Fatal("first start must return a question")
	}

	second, err := fx.svc.StartTest(ctx, fx.student, fx.testID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("second start created session %d, want %d", second.SessionID, first.SessionID)
	}
	if !second.Resume {
		t.Error("second start must resume the open session")
	}
	if len(fx.repo.sessions) != 1 {
		t.Errorf("got %d sessions, want 1", len(fx.repo.sessions))
	}
}

func TestStartTestSamplesQuestionCount(t *testing.T) {
	fx := newFixture(t, 10, 3, 30)

	resp, err := fx.svc.StartTest(context.Background(), fx.student, fx.testID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if resp.TotalQuestions != 3 {
		t.Errorf("got sample size %d, want 3", resp.TotalQuestions)
	}
	sample := fx.repo.sessionQuestions[resp.SessionID]
	if len(sample) != 3 {
		t.Fatalf("stored sample size %d, want 3", len(sample))
	}
	seen := make(map[int]bool)
	for _, id := range sample {
		if seen[id] {
			t.Errorf("question %d sampled twice", id)
		}
		seen[id] = true
		if fx.repo.questions[id] == nil {
			t.Errorf("sampled question %d not in bank", id)
		}
	}
}

func TestStartTestInsufficientBank(t *testing.T) {
	fx := newFixture(t, 2, 3, 30)

	_, err := fx.svc.StartTest(context.Background(), fx.student, fx.testID)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("got %v, want bad request", err)
	}
}

func TestStartTestDisqualified(t *testing.T) {
	fx := newFixture(t, 10, 3, 30)
	fx.svc.registry = &fakeRegistry{banned: map[string]string{fx.student.HemisID: "axloqiy qoidabuzarlik"}}

	_, err := fx.svc.StartTest(context.Background(), fx.student, fx.testID)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
}

func TestStartTestWrongLevel(t *testing.T) {
	fx := newFixture(t, 10, 3, 30)
	otherLevel := 4
	fx.student.LevelID = &otherLevel

	_, err := fx.svc.StartTest(context.Background(), fx.student, fx.testID)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
}

func TestStartTestBeforeStartTime(t *testing.T) {
	fx := newFixture(t, 10, 3, 30)
	startTime := fx.clock.Add(time.Hour)
	fx.repo.tests[fx.testID].StartTime = &startTime

	_, err := fx.svc.StartTest(context.Background(), fx.student, fx.testID)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("got %v, want bad request", err)
	}
}

func TestSubmitAnswerDuplicateRejected(t *testing.T) {
	fx := newFixture(t, 5, 3, 30)
	ctx := context.Background()

	resp, err := fx.svc.StartTest(ctx, fx.student, fx.testID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	questionID := resp.FirstQuestion.ID
	optionID := fx.option(t, questionID, true)

	if _, err := fx.svc.SubmitAnswer(ctx, fx.student.ID, resp.SessionID, questionID, optionID); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err = fx.svc.SubmitAnswer(ctx, fx.student.ID, resp.SessionID, questionID, optionID)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("got %v, want bad request for duplicate answer", err)
	}
	if len(fx.repo.answers[resp.SessionID]) != 1 {
		t.Errorf("got %d answers, want 1", len(fx.repo.answers[resp.SessionID]))
	}
}

func TestSubmitAnswerOutsideSample(t *testing.T) {
	fx := newFixture(t, 10, 3, 30)
	ctx := context.Background()

	resp, err := fx.svc.StartTest(ctx, fx.student, fx.testID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	sample := fx.repo.sessionQuestions[resp.SessionID]
	inSample := make(map[int]bool)
	for _, id := range sample {
		inSample[id] = true
	}
	var outsideID int
	for _, id := range fx.repo.questionsByTest[fx.testID] {
		if !inSample[id] {
			outsideID = id
			break
		}
	}
	if outsideID == 0 {
		t.Fatal("no question outside sample")
	}

	_, err = fx.svc.SubmitAnswer(ctx, fx.student.ID, resp.SessionID, outsideID, fx.option(t, outsideID, true))
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("got %v, want bad request for question outside sample", err)
	}
}

func TestSubmitAnswerAfterExpiry(t *testing.T) {
	fx := newFixture(t, 5, 3, 30)
	ctx := context.Background()

	resp, err := fx.svc.StartTest(ctx, fx.student, fx.testID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	questionID := resp.FirstQuestion.ID

	*fx.clock = fx.clock.Add(31 * time.Minute)

	_, err = fx.svc.SubmitAnswer(ctx, fx.student.ID, resp.SessionID, questionID, fx.option(t, questionID, true))
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("got %v, want forbidden after expiry", err)
	}
	session := fx.repo.sessions[resp.SessionID]
	if session.FinishedAt == nil {
		t.Error("expired session must be finalized")
	}
	if session.Score == nil || *session.Score != 0 {
		t.Errorf("got score %v, want 0 with no answers", session.Score)
	}
}

func TestNextQuestionNeverReserves(t *testing.T) {
	fx := newFixture(t, 5, 3, 30)
	ctx := context.Background()

	resp, err := fx.svc.StartTest(ctx, fx.student, fx.testID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	served := make(map[int]bool)
	sessionID := resp.SessionID
	questionID := resp.FirstQuestion.ID

	for i := 0; i < 3; i++ {
		if served[questionID] {
			t.Fatalf("question %d served twice", questionID)
		}
		served[questionID] = true

		state, err := fx.svc.SubmitAnswer(ctx, fx.student.ID, sessionID, questionID, fx.option(t, questionID, true))
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if i < 2 {
			if state.Finished || state.Question == nil {
				t.Fatalf("expected next question after answer %d", i)
			}
			if state.Position != i+2 {
				t.Errorf("got position %d, want %d", state.Position, i+2)
			}
			questionID = state.Question.ID
		} else {
			if !state.Finished {
				t.Fatal("session must finish after last answer")
			}
			if state.Result == nil || state.Result.Score != 100 {
				t.Errorf("got result %+v, want score 100", state.Result)
			}
		}
	}
}

func TestFinishScoresUnansweredAsWrong(t *testing.T) {
	fx := newFixture(t, 5, 5, 30)
	ctx := context.Background()

	resp, err := fx.svc.StartTest(ctx, fx.student, fx.testID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// Отвечаем правильно на 4 вопроса из 5, пятый остаётся без ответа
	sample := fx.repo.sessionQuestions[resp.SessionID]
	for _, questionID := range sample[:4] {
		if _, err := fx.svc.SubmitAnswer(ctx, fx.student.ID, resp.SessionID, questionID, fx.option(t, questionID, true)); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	result, err := fx.svc.FinishTest(ctx, fx.student.ID, resp.SessionID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if result.CorrectAnswers != 4 || result.TotalQuestions != 5 {
		t.Errorf("got %d/%d, want 4/5", result.CorrectAnswers, result.TotalQuestions)
	}
	if result.Score != 80.0 {
		t.Errorf("got score %v, want 80.0", result.Score)
	}
}

func TestFinishIdempotent(t *testing.T) {
	fx := newFixture(t, 5, 3, 30)
	ctx := context.Background()

	resp, err := fx.svc.StartTest(ctx, fx.student, fx.testID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	first, err := fx.svc.FinishTest(ctx, fx.student.ID, resp.SessionID)
	if err != nil {
		t.Fatalf("first finish: %v", err)
	}

	*fx.clock = fx.clock.Add(10 * time.Minute)
	second, err := fx.svc.FinishTest(ctx, fx.student.ID, resp.SessionID)
	if err != nil {
		t.Fatalf("second finish: %v", err)
	}
	if second.Score != first.Score || second.FinishedAt != first.FinishedAt {
		t.Errorf("second finish changed result: %+v vs %+v", second, first)
	}
}

// Сквозной сценарий: тест на 3 вопроса с лимитом 30 минут, один правильный
// ответ, затем время истекает и возобновление возвращает итог 33.33
func TestExpiredSessionScenario(t *testing.T) {
	fx := newFixture(t, 10, 3, 30)
	ctx := context.Background()

	resp, err := fx.svc.StartTest(ctx, fx.student, fx.testID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	questionID := resp.FirstQuestion.ID
	if _, err := fx.svc.SubmitAnswer(ctx, fx.student.ID, resp.SessionID, questionID, fx.option(t, questionID, true)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	*fx.clock = fx.clock.Add(31 * time.Minute)

	state, err := fx.svc.ResumeSession(ctx, fx.student.ID, fx.testID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !state.Finished {
		t.Fatal("expired session must resume as finished")
	}
	if state.Result == nil || state.Result.Score != 33.33 {
		t.Errorf("got result %+v, want score 33.33", state.Result)
	}
	if state.Result.CorrectAnswers != 1 || state.Result.TotalQuestions != 3 {
		t.Errorf("got %d/%d, want 1/3", state.Result.CorrectAnswers, state.Result.TotalQuestions)
	}
}

func TestResumeWithoutSession(t *testing.T) {
	fx := newFixture(t, 5, 3, 30)

	_, err := fx.svc.ResumeSession(context.Background(), fx.student.ID, fx.testID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestFinishZeroQuestions(t *testing.T) {
	fx := newFixture(t, 5, 3, 30)
	ctx := context.Background()

	// Сессия с пустой выборкой: итог должен быть 0 без деления на ноль
	session, _, err := fx.repo.CreateSession(ctx, fx.student.ID, fx.testID, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	result, err := fx.svc.FinishTest(ctx, fx.student.ID, session.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if result.Score != 0 || result.TotalQuestions != 0 {
		t.Errorf("got %+v, want zero score", result)
	}
}
