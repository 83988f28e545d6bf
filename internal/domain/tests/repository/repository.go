package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tma-tanlov/backend/internal/domain/model"
)

// TestRepository репозиторий для тестов, вопросов, сессий и ответов
type TestRepository struct {
	db *pgxpool.Pool
}

// NewTestRepository создает новый экземпляр TestRepository
func NewTestRepository(db *pgxpool.Pool) *TestRepository {
	return &TestRepository{db: db}
}

// GetTestByID получает тест по ID
func (r *TestRepository) GetTestByID(ctx context.Context, testID int) (*model.Test, error) {
	var test model.Test
	err := r.db.QueryRow(ctx, `
                SELECT id, title, question_count, time_limit, start_time, created_at
                FROM tests WHERE id = $1
        `, testID).Scan(&test.ID, &test.Title, &test.QuestionCount, &test.TimeLimit, &test.StartTime, &test.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return &test, nil
}

// GetTests получает все тесты, новые первыми
func (r *TestRepository) GetTests(ctx context.Context) ([]model.Test, error) {
	rows, err := r.db.Query(ctx, `
                SELECT id, title, question_count, time_limit, start_time, created_at
                FROM tests ORDER BY created_at DESC
        `)
	if err != nil {
		return nil, fmt.Errorf("failed to query tests: %w", err)
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var test model.Test
		if err := rows.Scan(&test.ID, &test.Title, &test.QuestionCount, &test.TimeLimit, &test.StartTime, &test.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan test: %w", err)
		}
		tests = append(tests, test)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return tests, nil
}

// TestAllowsLevel проверяет, открыт ли тест для курса (уровня) студента
func (r *TestRepository) TestAllowsLevel(ctx context.Context, testID int, levelID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
                SELECT EXISTS (
                        SELECT 1 FROM test_levels
                        WHERE test_id = $1 AND level_id = $2
                )
        `, testID, levelID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check test level: %w", err)
	}
	return exists, nil
}

// GetQuestionIDsByTestID получает ID всех вопросов банка теста
func (r *TestRepository) GetQuestionIDsByTestID(ctx context.Context, testID int) ([]int, error) {
	rows, err := r.db.Query(ctx, "SELECT id FROM questions WHERE test_id = $1", testID)
	if err != nil {
		return nil, fmt.Errorf("failed to query question ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return ids, nil
}

// GetQuestionByID получает вопрос по ID
func (r *TestRepository) GetQuestionByID(ctx context.Context, questionID int) (*model.Question, error) {
	var q model.Question
	err := r.db.QueryRow(ctx, `
                SELECT id, test_id, text, correct_option FROM questions WHERE id = $1
        `, questionID).Scan(&q.ID, &q.TestID, &q.Text, &q.CorrectOption)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

// GetOptionsByQuestionID получает варианты ответа вопроса
func (r *TestRepository) GetOptionsByQuestionID(ctx context.Context, questionID int) ([]model.Option, error) {
	rows, err := r.db.Query(ctx, `
                SELECT id, question_id, label, text, is_correct
                FROM options WHERE question_id = $1 ORDER BY label
        `, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	var options []model.Option
	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Label, &o.Text, &o.IsCorrect); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return options, nil
}

// GetOptionByID получает вариант ответа по ID
func (r *TestRepository) GetOptionByID(ctx context.Context, optionID int) (*model.Option, error) {
	var o model.Option
	err := r.db.QueryRow(ctx, `
                SELECT id, question_id, label, text, is_correct FROM options WHERE id = $1
        `, optionID).Scan(&o.ID, &o.QuestionID, &o.Label, &o.Text, &o.IsCorrect)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	return &o, nil
}

// ImportTest создает тест вместе с вопросами и вариантами в одной транзакции
func (r *TestRepository) ImportTest(ctx context.Context, title string, timeLimit int, startTime *time.Time, levelIDs []int, questions []model.QuestionDraft) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var testID int
	err = tx.QueryRow(ctx, `
                INSERT INTO tests (title, question_count, time_limit, start_time, created_at)
                VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
                RETURNING id
        `, title, len(questions), timeLimit, startTime).Scan(&testID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert test: %w", err)
	}

	for _, levelID := range levelIDs {
		if _, err := tx.Exec(ctx, "INSERT INTO test_levels (test_id, level_id) VALUES ($1, $2)", testID, levelID); err != nil {
			return 0, fmt.Errorf("failed to insert test level: %w", err)
		}
	}

	for _, q := range questions {
		var questionID int
		err = tx.QueryRow(ctx, `
                        INSERT INTO questions (test_id, text, correct_option) VALUES ($1, $2, $3) RETURNING id
                `, testID, q.Text, q.CorrectOption).Scan(&questionID)
		if err != nil {
			return 0, fmt.Errorf("failed to insert question: %w", err)
		}
		for _, o := range q.Options {
			_, err = tx.Exec(ctx, `
                                INSERT INTO options (question_id, label, text, is_correct) VALUES ($1, $2, $3, $4)
                        `, questionID, o.Label, o.Text, o.IsCorrect)
			if err != nil {
				return 0, fmt.Errorf("failed to insert option: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit tx: %w", err)
	}
	return testID, nil
}

// CreateSession атомарно создает сессию с зафиксированной выборкой вопросов.
// Уникальный индекс по (student_id, test_id) гарантирует одну сессию на пару:
// при гонке проигравший запрос не вставляет строку и получает created=false,
// после чего вызывающий перечитывает существующую сессию.
func (r *TestRepository) CreateSession(ctx context.Context, studentID, testID int, questionIDs []int) (*model.TestSession, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var session model.TestSession
	err = tx.QueryRow(ctx, `
                INSERT INTO test_sessions (student_id, test_id, started_at, current_question_index)
                VALUES ($1, $2, CURRENT_TIMESTAMP, 0)
                ON CONFLICT (student_id, test_id) DO NOTHING
                RETURNING id, student_id, test_id, started_at, finished_at, score, correct_answers, total_questions, current_question_index
        `, studentID, testID).Scan(
		&session.ID, &session.StudentID, &session.TestID, &session.StartedAt, &session.FinishedAt,
		&session.Score, &session.CorrectAnswers, &session.TotalQuestions, &session.CurrentQuestionIndex,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Сессию уже создал конкурирующий запрос
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to insert session: %w", err)
	}

	for pos, questionID := range questionIDs {
		_, err = tx.Exec(ctx, `
                        INSERT INTO session_questions (session_id, question_id, position) VALUES ($1, $2, $3)
                `, session.ID, questionID, pos)
		if err != nil {
			return nil, false, fmt.Errorf("failed to insert session question: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit tx: %w", err)
	}
	return &session, true, nil
}

// GetSessionByStudentAndTest получает сессию пары (student, test)
func (r *TestRepository) GetSessionByStudentAndTest(ctx context.Context, studentID, testID int) (*model.TestSession, error) {
	return r.getSession(ctx, "WHERE student_id = $1 AND test_id = $2", studentID, testID)
}

// GetSessionByIDAndStudent получает сессию по ID с проверкой владельца
func (r *TestRepository) GetSessionByIDAndStudent(ctx context.Context, sessionID, studentID int) (*model.TestSession, error) {
	return r.getSession(ctx, "WHERE id = $1 AND student_id = $2", sessionID, studentID)
}

func (r *TestRepository) getSession(ctx context.Context, where string, args ...any) (*model.TestSession, error) {
	var session model.TestSession
	err := r.db.QueryRow(ctx, `
                SELECT id, student_id, test_id, started_at, finished_at, score, correct_answers, total_questions, current_question_index
                FROM test_sessions `+where, args...).Scan(
		&session.ID, &session.StudentID, &session.TestID, &session.StartedAt, &session.FinishedAt,
		&session.Score, &session.CorrectAnswers, &session.TotalQuestions, &session.CurrentQuestionIndex,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// GetSessionsByStudent получает все сессии студента
func (r *TestRepository) GetSessionsByStudent(ctx context.Context, studentID int) ([]model.TestSession, error) {
	rows, err := r.db.Query(ctx, `
                SELECT id, student_id, test_id, started_at, finished_at, score, correct_answers, total_questions, current_question_index
                FROM test_sessions WHERE student_id = $1 ORDER BY started_at
        `, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.TestSession
	for rows.Next() {
		var s model.TestSession
		if err := rows.Scan(&s.ID, &s.StudentID, &s.TestID, &s.StartedAt, &s.FinishedAt,
			&s.Score, &s.CorrectAnswers, &s.TotalQuestions, &s.CurrentQuestionIndex); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return sessions, nil
}

// GetSessionQuestionIDs получает выборку вопросов сессии в порядке фиксации
func (r *TestRepository) GetSessionQuestionIDs(ctx context.Context, sessionID int) ([]int, error) {
	rows, err := r.db.Query(ctx, `
                SELECT question_id FROM session_questions WHERE session_id = $1 ORDER BY position
        `, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session questions: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session question: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return ids, nil
}

// GetAnsweredQuestionIDs получает ID вопросов, на которые уже дан ответ
func (r *TestRepository) GetAnsweredQuestionIDs(ctx context.Context, sessionID int) ([]int, error) {
	rows, err := r.db.Query(ctx, "SELECT question_id FROM answers WHERE session_id = $1", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answered questions: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan answered question: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return ids, nil
}

// InsertAnswer сохраняет ответ. Уникальный индекс по (session_id, question_id)
// отбрасывает повторную вставку: возвращается inserted=false без ошибки.
func (r *TestRepository) InsertAnswer(ctx context.Context, sessionID, questionID, selectedOptionID int, isCorrect bool) (bool, error) {
	result, err := r.db.Exec(ctx, `
                INSERT INTO answers (session_id, question_id, selected_option_id, is_correct, created_at)
                VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
                ON CONFLICT (session_id, question_id) DO NOTHING
        `, sessionID, questionID, selectedOptionID, isCorrect)
	if err != nil {
		return false, fmt.Errorf("failed to insert answer: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// GetAnswersBySession получает ответы сессии
func (r *TestRepository) GetAnswersBySession(ctx context.Context, sessionID int) ([]model.Answer, error) {
	rows, err := r.db.Query(ctx, `
                SELECT id, session_id, question_id, selected_option_id, is_correct, created_at
                FROM answers WHERE session_id = $1 ORDER BY created_at
        `, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.SelectedOptionID, &a.IsCorrect, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return answers, nil
}

// CountCorrectAnswers считает правильные ответы сессии
func (r *TestRepository) CountCorrectAnswers(ctx context.Context, sessionID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
                SELECT COUNT(*) FROM answers WHERE session_id = $1 AND is_correct = TRUE
        `, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count correct answers: %w", err)
	}
	return count, nil
}

// UpdateSessionIndex обновляет индекс текущего вопроса
func (r *TestRepository) UpdateSessionIndex(ctx context.Context, sessionID, index int) error {
	_, err := r.db.Exec(ctx, `
                UPDATE test_sessions SET current_question_index = $2 WHERE id = $1
        `, sessionID, index)
	if err != nil {
		return fmt.Errorf("failed to update session index: %w", err)
	}
	return nil
}

// FinishSession записывает итог сессии. Условие finished_at IS NULL делает
// завершение идемпотентным: повторный вызов не перезаписывает результат.
func (r *TestRepository) FinishSession(ctx context.Context, sessionID int, finishedAt time.Time, correct, total int, score float64) error {
	_, err := r.db.Exec(ctx, `
                UPDATE test_sessions
                SET finished_at = $2, correct_answers = $3, total_questions = $4, score = $5
                WHERE id = $1 AND finished_at IS NULL
        `, sessionID, finishedAt, correct, total, score)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	return nil
}
