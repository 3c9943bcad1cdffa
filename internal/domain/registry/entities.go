// Package registry provides the persisted entity types for the onboarding
// wizard and their PostgreSQL data access.
package registry

import (
	"time"

	"github.com/google/uuid"
)

// District is a school district.
type District struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	Address   string    `db:"address"`
	City      string    `db:"city"`
	State     string    `db:"state"`
	Zip       string    `db:"zip"`
	Phone     string    `db:"phone"`
	Website   string    `db:"website"`
	CreatedAt time.Time `db:"created_at"`
}

// School is one school within a district.
type School struct {
	ID             uuid.UUID  `db:"id"`
	DistrictID     *uuid.UUID `db:"district_id"`
	Name           string     `db:"name"`
	Code           string     `db:"code"`
	GradeLow       *int       `db:"grade_low"`
	GradeHigh      *int       `db:"grade_high"`
	Address        string     `db:"address"`
	City           string     `db:"city"`
	State          string     `db:"state"`
	Zip            string     `db:"zip"`
	Phone          string     `db:"phone"`
	PrincipalEmail string     `db:"principal_email"`
	CreatedAt      time.Time  `db:"created_at"`
}

// StaffMember is a teacher or other school employee.
type StaffMember struct {
	ID         uuid.UUID `db:"id"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	Email      string    `db:"email"`
	Role       string    `db:"role"`
	Phone      string    `db:"phone"`
	SchoolCode string    `db:"school_code"`
	CreatedAt  time.Time `db:"created_at"`
}

// Student is an enrolled student. SchoolStudentID is the school-issued
// external identifier bulk imports reference.
type Student struct {
	ID              uuid.UUID `db:"id"`
	SchoolStudentID string    `db:"school_student_id"`
	FirstName       string    `db:"first_name"`
	LastName        string    `db:"last_name"`
	GradeLevel      *int      `db:"grade_level"`
	BirthDate       string    `db:"birth_date"`
	Gender          string    `db:"gender"`
	Guardian1Name   string    `db:"guardian1_name"`
	Guardian1Email  string    `db:"guardian1_email"`
	Guardian2Name   string    `db:"guardian2_name"`
	Guardian2Email  string    `db:"guardian2_email"`
	CreatedAt       time.Time `db:"created_at"`
}

// Classroom is a class section.
type Classroom struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	SchoolCode   string    `db:"school_code"`
	GradeLevel   *int      `db:"grade_level"`
	Subject      string    `db:"subject"`
	TeacherEmail string    `db:"teacher_email"`
	Period       string    `db:"period"`
	CreatedAt    time.Time `db:"created_at"`
}

// Enrollment links a student to a classroom.
type Enrollment struct {
	ID              uuid.UUID `db:"id"`
	SchoolStudentID string    `db:"school_student_id"`
	ClassroomName   string    `db:"classroom_name"`
	EnrollmentDate  string    `db:"enrollment_date"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
}

// AttendanceEntry is one day's attendance record for a student.
type AttendanceEntry struct {
	ID              uuid.UUID  `db:"id"`
	StudentID       *uuid.UUID `db:"student_id"`
	SchoolStudentID string     `db:"school_student_id"`
	RecordDate      string     `db:"record_date"`
	Status          string     `db:"status"`
	Notes           string     `db:"notes"`
	CreatedAt       time.Time  `db:"created_at"`
}

// AssessmentResult is one assessment score for a student.
type AssessmentResult struct {
	ID               uuid.UUID `db:"id"`
	SchoolStudentID  string    `db:"school_student_id"`
	AssessmentName   string    `db:"assessment_name"`
	AssessmentDate   string    `db:"assessment_date"`
	Score            string    `db:"score"`
	MaxScore         string    `db:"max_score"`
	ProficiencyLevel string    `db:"proficiency_level"`
	CreatedAt        time.Time `db:"created_at"`
}
