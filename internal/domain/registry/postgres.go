package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repository uses. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// PostgresRepository implements Repository against PostgreSQL.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a PostgreSQL-backed registry repository.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InsertDistrict(ctx context.Context, d *District) error {
	query := `
		INSERT INTO districts (name, code, address, city, state, zip, phone, website)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		d.Name, d.Code, d.Address, d.City, d.State, d.Zip, d.Phone, d.Website,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert district %q: %w", d.Name, err)
	}
	return nil
}

func (r *PostgresRepository) InsertSchool(ctx context.Context, s *School) error {
	query := `
		INSERT INTO schools (district_id, name, code, grade_low, grade_high,
			address, city, state, zip, phone, principal_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		s.DistrictID, s.Name, s.Code, s.GradeLow, s.GradeHigh,
		s.Address, s.City, s.State, s.Zip, s.Phone, s.PrincipalEmail,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert school %q: %w", s.Name, err)
	}
	return nil
}

func (r *PostgresRepository) InsertStaffMember(ctx context.Context, m *StaffMember) error {
	query := `
		INSERT INTO staff_members (first_name, last_name, email, role, phone, school_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		m.FirstName, m.LastName, m.Email, m.Role, m.Phone, m.SchoolCode,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert staff member %q: %w", m.Email, err)
	}
	return nil
}

func (r *PostgresRepository) InsertStudent(ctx context.Context, s *Student) error {
	query := `
		INSERT INTO students (school_student_id, first_name, last_name, grade_level,
			birth_date, gender, guardian1_name, guardian1_email, guardian2_name, guardian2_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		s.SchoolStudentID, s.FirstName, s.LastName, s.GradeLevel,
		s.BirthDate, s.Gender, s.Guardian1Name, s.Guardian1Email,
		s.Guardian2Name, s.Guardian2Email,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert student %q: %w", s.SchoolStudentID, err)
	}
	return nil
}

func (r *PostgresRepository) InsertClassroom(ctx context.Context, c *Classroom) error {
	query := `
		INSERT INTO classrooms (name, school_code, grade_level, subject, teacher_email, period)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		c.Name, c.SchoolCode, c.GradeLevel, c.Subject, c.TeacherEmail, c.Period,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert classroom %q: %w", c.Name, err)
	}
	return nil
}

func (r *PostgresRepository) InsertEnrollment(ctx context.Context, e *Enrollment) error {
	query := `
		INSERT INTO enrollments (school_student_id, classroom_name, enrollment_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		e.SchoolStudentID, e.ClassroomName, e.EnrollmentDate, e.Status,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert enrollment for %q: %w", e.SchoolStudentID, err)
	}
	return nil
}

func (r *PostgresRepository) InsertAttendanceEntry(ctx context.Context, a *AttendanceEntry) error {
	query := `
		INSERT INTO attendance_entries (student_id, school_student_id, record_date, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		a.StudentID, a.SchoolStudentID, a.RecordDate, a.Status, a.Notes,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert attendance for %q on %s: %w", a.SchoolStudentID, a.RecordDate, err)
	}
	return nil
}

func (r *PostgresRepository) InsertAssessmentResult(ctx context.Context, res *AssessmentResult) error {
	query := `
		INSERT INTO assessment_results (school_student_id, assessment_name,
			assessment_date, score, max_score, proficiency_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		res.SchoolStudentID, res.AssessmentName, res.AssessmentDate,
		res.Score, res.MaxScore, res.ProficiencyLevel,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert assessment %q for %q: %w", res.AssessmentName, res.SchoolStudentID, err)
	}
	return nil
}

func (r *PostgresRepository) FindStudentByExternalID(ctx context.Context, schoolStudentID string) (uuid.UUID, bool, error) {
	query := `SELECT id FROM students WHERE school_student_id = $1`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, schoolStudentID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("lookup student %q: %w", schoolStudentID, err)
	}
	return id, true, nil
}
