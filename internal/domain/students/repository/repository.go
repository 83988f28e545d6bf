package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tma-tanlov/backend/internal/domain/model"
)

// StudentRepository репозиторий студентов, справочников и реестра отстранённых
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository создает новый экземпляр StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, hemis_id, full_name, short_name, email, phone, image, gender,
        birth_date, address, university, faculty_id, "group", level_id, toifa, created_at, updated_at`

func scanStudent(row pgx.Row) (*model.Student, error) {
	var s model.Student
	err := row.Scan(&s.ID, &s.HemisID, &s.FullName, &s.ShortName, &s.Email, &s.Phone, &s.Image, &s.Gender,
		&s.BirthDate, &s.Address, &s.Univer, &s.FacultyID, &s.Group, &s.LevelID, &s.Toifa, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}
	return &s, nil
}

// UpsertStudent создает или обновляет карточку студента по hemis_id
func (r *StudentRepository) UpsertStudent(ctx context.Context, s *model.Student) (*model.Student, error) {
	row := r.db.QueryRow(ctx, `
                INSERT INTO students (hemis_id, full_name, short_name, email, phone, image, gender,
                        birth_date, address, university, faculty_id, "group", level_id, toifa, created_at, updated_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
                ON CONFLICT (hemis_id) DO UPDATE SET
                        full_name = EXCLUDED.full_name,
                        short_name = EXCLUDED.short_name,
                        email = EXCLUDED.email,
                        phone = EXCLUDED.phone,
                        image = EXCLUDED.image,
                        gender = EXCLUDED.gender,
                        birth_date = EXCLUDED.birth_date,
                        address = EXCLUDED.address,
                        university = EXCLUDED.university,
                        faculty_id = EXCLUDED.faculty_id,
                        "group" = EXCLUDED."group",
                        level_id = EXCLUDED.level_id,
                        toifa = EXCLUDED.toifa,
                        updated_at = CURRENT_TIMESTAMP
                RETURNING `+studentColumns,
		s.HemisID, s.FullName, s.ShortName, s.Email, s.Phone, s.Image, s.Gender,
		s.BirthDate, s.Address, s.Univer, s.FacultyID, s.Group, s.LevelID, s.Toifa)
	saved, err := scanStudent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert student: %w", err)
	}
	return saved, nil
}

// GetStudentByID получает студента по ID
func (r *StudentRepository) GetStudentByID(ctx context.Context, studentID int) (*model.Student, error) {
	return scanStudent(r.db.QueryRow(ctx, "SELECT "+studentColumns+" FROM students WHERE id = $1", studentID))
}

// GetStudentByHemisID получает студента по номеру студенческого билета
func (r *StudentRepository) GetStudentByHemisID(ctx context.Context, hemisID string) (*model.Student, error) {
	return scanStudent(r.db.QueryRow(ctx, "SELECT "+studentColumns+" FROM students WHERE hemis_id = $1", hemisID))
}

// GetOrCreateLevel получает или создает курс по коду
func (r *StudentRepository) GetOrCreateLevel(ctx context.Context, code, name string) (int, error) {
	var id int
	err := r.db.QueryRow(ctx, `
                INSERT INTO levels (code, name) VALUES ($1, $2)
                ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
                RETURNING id
        `, code, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to get or create level: %w", err)
	}
	return id, nil
}

// GetLevelByID получает курс по ID
func (r *StudentRepository) GetLevelByID(ctx context.Context, levelID int) (*model.Level, error) {
	var level model.Level
	err := r.db.QueryRow(ctx, "SELECT id, code, name FROM levels WHERE id = $1", levelID).
		Scan(&level.ID, &level.Code, &level.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get level: %w", err)
	}
	return &level, nil
}

// GetOrCreateFaculty получает или создает факультет по имени
func (r *StudentRepository) GetOrCreateFaculty(ctx context.Context, hemisID *int, name string, code *string) (int, error) {
	var id int
	err := r.db.QueryRow(ctx, `
                INSERT INTO faculties (hemis_id, name, code) VALUES ($1, $2, $3)
                ON CONFLICT (name) DO UPDATE SET hemis_id = EXCLUDED.hemis_id, code = EXCLUDED.code
                RETURNING id
        `, hemisID, name, code).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to get or create faculty: %w", err)
	}
	return id, nil
}

// GetFacultyByID получает факультет по ID
func (r *StudentRepository) GetFacultyByID(ctx context.Context, facultyID int) (*model.Faculty, error) {
	var f model.Faculty
	err := r.db.QueryRow(ctx, "SELECT id, hemis_id, name, code FROM faculties WHERE id = $1", facultyID).
		Scan(&f.ID, &f.HemisID, &f.Name, &f.Code)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get faculty: %w", err)
	}
	return &f, nil
}

// ReplaceGPARecords заменяет записи GPA студента свежими данными из HEMIS
func (r *StudentRepository) ReplaceGPARecords(ctx context.Context, studentID int, records []model.GPARecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM gpa_records WHERE student_id = $1", studentID); err != nil {
		return fmt.Errorf("failed to delete gpa records: %w", err)
	}
	for _, rec := range records {
		_, err := tx.Exec(ctx, `
                        INSERT INTO gpa_records (student_id, education_year, level, gpa, credit_sum,
                                subjects, debt_subjects, can_transfer, method, created_at)
                        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
                `, studentID, rec.EducationYear, rec.Level, rec.GPA, rec.CreditSum,
			rec.Subjects, rec.DebtSubjects, rec.CanTransfer, rec.Method)
		if err != nil {
			return fmt.Errorf("failed to insert gpa record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}

// GetGPARecords получает записи GPA студента, свежие первыми
func (r *StudentRepository) GetGPARecords(ctx context.Context, studentID int) ([]model.GPARecord, error) {
	rows, err := r.db.Query(ctx, `
                SELECT id, student_id, education_year, level, gpa, credit_sum,
                        subjects, debt_subjects, can_transfer, method, created_at
                FROM gpa_records WHERE student_id = $1 ORDER BY education_year DESC
        `, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query gpa records: %w", err)
	}
	defer rows.Close()

	var records []model.GPARecord
	for rows.Next() {
		var rec model.GPARecord
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.EducationYear, &rec.Level, &rec.GPA, &rec.CreditSum,
			&rec.Subjects, &rec.DebtSubjects, &rec.CanTransfer, &rec.Method, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gpa record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return records, nil
}

// GetDisqualificationReason ищет студента в реестре отстранённых
func (r *StudentRepository) GetDisqualificationReason(ctx context.Context, hemisID string) (string, bool, error) {
	var reason string
	err := r.db.QueryRow(ctx, "SELECT reason FROM disqualified_students WHERE hemis_id = $1", hemisID).Scan(&reason)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get disqualification: %w", err)
	}
	return reason, true, nil
}

// AddDisqualified добавляет студента в реестр или обновляет причину
func (r *StudentRepository) AddDisqualified(ctx context.Context, hemisID, reason string) error {
	_, err := r.db.Exec(ctx, `
                INSERT INTO disqualified_students (hemis_id, reason) VALUES ($1, $2)
                ON CONFLICT (hemis_id) DO UPDATE SET reason = EXCLUDED.reason
        `, hemisID, reason)
	if err != nil {
		return fmt.Errorf("failed to add disqualified student: %w", err)
	}
	return nil
}

// RemoveDisqualified убирает студента из реестра
func (r *StudentRepository) RemoveDisqualified(ctx context.Context, hemisID string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM disqualified_students WHERE hemis_id = $1", hemisID)
	if err != nil {
		return fmt.Errorf("failed to remove disqualified student: %w", err)
	}
	return nil
}

// ListDisqualified получает весь реестр отстранённых
func (r *StudentRepository) ListDisqualified(ctx context.Context) ([]model.DisqualifiedStudent, error) {
	rows, err := r.db.Query(ctx, "SELECT id, hemis_id, reason FROM disqualified_students ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query disqualified students: %w", err)
	}
	defer rows.Close()

	var list []model.DisqualifiedStudent
	for rows.Next() {
		var d model.DisqualifiedStudent
		if err := rows.Scan(&d.ID, &d.HemisID, &d.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan disqualified student: %w", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return list, nil
}
