package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tma-tanlov/backend/internal/domain/dto"
	"github.com/tma-tanlov/backend/internal/domain/model"
)

// ApplicationRepository репозиторий конкурсов, заявок и баллов
type ApplicationRepository struct {
	db *pgxpool.Pool
}

// NewApplicationRepository создает новый экземпляр ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// GetSections получает разделы конкурса
func (r *ApplicationRepository) GetSections(ctx context.Context) ([]model.Section, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name FROM sections ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return sections, nil
}

const directionColumns = "id, section_id, name, direction_type, require_file, test_id, min_score, max_score"

// GetDirectionsBySection получает направления раздела
func (r *ApplicationRepository) GetDirectionsBySection(ctx context.Context, sectionID int) ([]model.Direction, error) {
	rows, err := r.db.Query(ctx, "SELECT "+directionColumns+" FROM directions WHERE section_id = $1 ORDER BY id", sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query directions: %w", err)
	}
	defer rows.Close()

	var directions []model.Direction
	for rows.Next() {
		var d model.Direction
		if err := rows.Scan(&d.ID, &d.SectionID, &d.Name, &d.Kind, &d.RequireFile, &d.TestID, &d.MinScore, &d.MaxScore); err != nil {
			return nil, fmt.Errorf("failed to scan direction: %w", err)
		}
		directions = append(directions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return directions, nil
}

// GetDirectionByID получает направление по ID
func (r *ApplicationRepository) GetDirectionByID(ctx context.Context, directionID int) (*model.Direction, error) {
	var d model.Direction
	err := r.db.QueryRow(ctx, "SELECT "+directionColumns+" FROM directions WHERE id = $1", directionID).
		Scan(&d.ID, &d.SectionID, &d.Name, &d.Kind, &d.RequireFile, &d.TestID, &d.MinScore, &d.MaxScore)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get direction: %w", err)
	}
	return &d, nil
}

const applicationTypeColumns = "id, key, name, subtitle, min_gpa, access_type, start_time, end_time"

// GetApplicationTypes получает типы конкурсов
func (r *ApplicationRepository) GetApplicationTypes(ctx context.Context) ([]model.ApplicationType, error) {
	rows, err := r.db.Query(ctx, "SELECT "+applicationTypeColumns+" FROM application_types ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query application types: %w", err)
	}
	defer rows.Close()

	var types []model.ApplicationType
	for rows.Next() {
		var t model.ApplicationType
		if err := rows.Scan(&t.ID, &t.Key, &t.Name, &t.Subtitle, &t.MinGPA, &t.AccessType, &t.StartTime, &t.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan application type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return types, nil
}

// GetApplicationTypeByKey получает тип конкурса по ключу
func (r *ApplicationRepository) GetApplicationTypeByKey(ctx context.Context, key string) (*model.ApplicationType, error) {
	var t model.ApplicationType
	err := r.db.QueryRow(ctx, "SELECT "+applicationTypeColumns+" FROM application_types WHERE key = $1", key).
		Scan(&t.ID, &t.Key, &t.Name, &t.Subtitle, &t.MinGPA, &t.AccessType, &t.StartTime, &t.EndTime)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application type: %w", err)
	}
	return &t, nil
}

// IsInSpecialList проверяет студента в отдельном списке допуска типа конкурса
func (r *ApplicationRepository) IsInSpecialList(ctx context.Context, typeID int, hemisID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
                SELECT EXISTS (
                        SELECT 1 FROM special_list_entries
                        WHERE application_type_id = $1 AND hemis_id = $2
                )
        `, typeID, hemisID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check special list: %w", err)
	}
	return exists, nil
}

const applicationColumns = "id, student_id, application_type_id, section_id, comment, status, submitted_at"

func scanApplication(row pgx.Row) (*model.Application, error) {
	var a model.Application
	err := row.Scan(&a.ID, &a.StudentID, &a.ApplicationTypeID, &a.SectionID, &a.Comment, &a.Status, &a.SubmittedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return &a, nil
}

// CreateApplicationWithItems создает заявку вместе с позициями в одной
// транзакции: либо записывается всё, либо ничего. Уникальный индекс по
// (student_id, application_type_id) даёт одну заявку на тип конкурса:
// при конфликте возвращается created=false.
func (r *ApplicationRepository) CreateApplicationWithItems(ctx context.Context, studentID, typeID int, sectionID *int, comment string, items []model.ApplicationItem) (*model.Application, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	app, err := scanApplication(tx.QueryRow(ctx, `
                INSERT INTO applications (student_id, application_type_id, section_id, comment, status, submitted_at)
                VALUES ($1, $2, $3, $4, 'pending', CURRENT_TIMESTAMP)
                ON CONFLICT (student_id, application_type_id) DO NOTHING
                RETURNING `+applicationColumns,
		studentID, typeID, sectionID, comment))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create application: %w", err)
	}
	if app == nil {
		return nil, false, nil
	}

	for _, item := range items {
		_, err = tx.Exec(ctx, `
                        INSERT INTO application_items (application_id, direction_id, title, student_comment, gpa, gpa_score, test_result)
                        VALUES ($1, $2, $3, $4, $5, $6, $7)
                `, app.ID, item.DirectionID, item.Title, item.StudentComment, item.GPA, item.GPAScore, item.TestResult)
		if err != nil {
			return nil, false, fmt.Errorf("failed to add application item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit tx: %w", err)
	}
	return app, true, nil
}

// GetApplicationByStudentAndType получает заявку студента на тип конкурса
func (r *ApplicationRepository) GetApplicationByStudentAndType(ctx context.Context, studentID, typeID int) (*model.Application, error) {
	return scanApplication(r.db.QueryRow(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE student_id = $1 AND application_type_id = $2",
		studentID, typeID))
}

// GetApplicationByID получает заявку по ID
func (r *ApplicationRepository) GetApplicationByID(ctx context.Context, applicationID int) (*model.Application, error) {
	return scanApplication(r.db.QueryRow(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE id = $1", applicationID))
}

// GetApplicationsByStudent получает заявки студента
func (r *ApplicationRepository) GetApplicationsByStudent(ctx context.Context, studentID int) ([]model.Application, error) {
	return r.queryApplications(ctx, "WHERE student_id = $1", studentID)
}

// GetApplicationsByType получает заявки на тип конкурса для комиссии
func (r *ApplicationRepository) GetApplicationsByType(ctx context.Context, typeID int) ([]model.Application, error) {
	return r.queryApplications(ctx, "WHERE application_type_id = $1", typeID)
}

func (r *ApplicationRepository) queryApplications(ctx context.Context, where string, args ...any) ([]model.Application, error) {
	rows, err := r.db.Query(ctx, "SELECT "+applicationColumns+" FROM applications "+where+" ORDER BY submitted_at", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		var a model.Application
		if err := rows.Scan(&a.ID, &a.StudentID, &a.ApplicationTypeID, &a.SectionID, &a.Comment, &a.Status, &a.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return apps, nil
}

// UpdateApplicationStatus обновляет статус заявки
func (r *ApplicationRepository) UpdateApplicationStatus(ctx context.Context, applicationID int, status string) error {
	_, err := r.db.Exec(ctx, "UPDATE applications SET status = $2 WHERE id = $1", applicationID, status)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	return nil
}

const itemColumns = "id, application_id, direction_id, title, student_comment, reviewer_comment, gpa, gpa_score, test_result"

// GetItemByID получает позицию заявки по ID
func (r *ApplicationRepository) GetItemByID(ctx context.Context, itemID int) (*model.ApplicationItem, error) {
	var item model.ApplicationItem
	err := r.db.QueryRow(ctx, "SELECT "+itemColumns+" FROM application_items WHERE id = $1", itemID).
		Scan(&item.ID, &item.ApplicationID, &item.DirectionID, &item.Title, &item.StudentComment,
			&item.ReviewerComment, &item.GPA, &item.GPAScore, &item.TestResult)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application item: %w", err)
	}
	return &item, nil
}

// GetItemsByApplication получает позиции заявки
func (r *ApplicationRepository) GetItemsByApplication(ctx context.Context, applicationID int) ([]model.ApplicationItem, error) {
	rows, err := r.db.Query(ctx, "SELECT "+itemColumns+" FROM application_items WHERE application_id = $1 ORDER BY id", applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query application items: %w", err)
	}
	defer rows.Close()

	var items []model.ApplicationItem
	for rows.Next() {
		var item model.ApplicationItem
		if err := rows.Scan(&item.ID, &item.ApplicationID, &item.DirectionID, &item.Title, &item.StudentComment,
			&item.ReviewerComment, &item.GPA, &item.GPAScore, &item.TestResult); err != nil {
			return nil, fmt.Errorf("failed to scan application item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return items, nil
}

// AddFile прикрепляет документ к позиции заявки
func (r *ApplicationRepository) AddFile(ctx context.Context, itemID int, path, comment string) error {
	_, err := r.db.Exec(ctx, `
                INSERT INTO application_files (item_id, path, comment, uploaded_at)
                VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
        `, itemID, path, comment)
	if err != nil {
		return fmt.Errorf("failed to add application file: %w", err)
	}
	return nil
}

// GetFilesByItem получает документы позиции заявки
func (r *ApplicationRepository) GetFilesByItem(ctx context.Context, itemID int) ([]model.ApplicationFile, error) {
	rows, err := r.db.Query(ctx, `
                SELECT id, item_id, path, comment, uploaded_at
                FROM application_files WHERE item_id = $1 ORDER BY id
        `, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query application files: %w", err)
	}
	defer rows.Close()

	var files []model.ApplicationFile
	for rows.Next() {
		var f model.ApplicationFile
		if err := rows.Scan(&f.ID, &f.ItemID, &f.Path, &f.Comment, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return files, nil
}

// UpsertScore выставляет балл комиссии. На позицию заявки хранится один балл,
// повторная оценка перезаписывает значение.
func (r *ApplicationRepository) UpsertScore(ctx context.Context, itemID int, reviewerID *int, value float64, note string) error {
	_, err := r.db.Exec(ctx, `
                INSERT INTO scores (item_id, reviewer_id, value, note, scored_at)
                VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
                ON CONFLICT (item_id) DO UPDATE SET
                        reviewer_id = EXCLUDED.reviewer_id,
                        value = EXCLUDED.value,
                        note = EXCLUDED.note,
                        scored_at = CURRENT_TIMESTAMP
        `, itemID, reviewerID, value, note)
	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}
	return nil
}

// GetScoreByItem получает балл позиции заявки
func (r *ApplicationRepository) GetScoreByItem(ctx context.Context, itemID int) (*model.Score, error) {
	var score model.Score
	err := r.db.QueryRow(ctx, `
                SELECT id, item_id, reviewer_id, value, note, scored_at FROM scores WHERE item_id = $1
        `, itemID).Scan(&score.ID, &score.ItemID, &score.ReviewerID, &score.Value, &score.Note, &score.ScoredAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get score: %w", err)
	}
	return &score, nil
}

// Leaderboard строит рейтинг по типу конкурса: сумма баллов комиссии,
// GPA-баллов и результатов тестов по каждой заявке
func (r *ApplicationRepository) Leaderboard(ctx context.Context, typeID int) ([]dto.LeaderboardRow, error) {
	rows, err := r.db.Query(ctx, `
                SELECT st.id, st.hemis_id, st.full_name,
                        COALESCE(f.name, ''), COALESCE(l.name, ''),
                        COALESCE(SUM(COALESCE(sc.value, 0) + COALESCE(ai.gpa_score, 0) + COALESCE(ai.test_result, 0)), 0) AS total
                FROM applications a
                JOIN students st ON st.id = a.student_id
                LEFT JOIN faculties f ON f.id = st.faculty_id
                LEFT JOIN levels l ON l.id = st.level_id
                LEFT JOIN application_items ai ON ai.application_id = a.id
                LEFT JOIN scores sc ON sc.item_id = ai.id
                WHERE a.application_type_id = $1
                GROUP BY st.id, st.hemis_id, st.full_name, f.name, l.name
                ORDER BY total DESC, st.full_name
        `, typeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var board []dto.LeaderboardRow
	for rows.Next() {
		var row dto.LeaderboardRow
		if err := rows.Scan(&row.StudentID, &row.HemisID, &row.FullName, &row.Faculty, &row.Level, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		row.Rank = len(board) + 1
		board = append(board, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return board, nil
}
