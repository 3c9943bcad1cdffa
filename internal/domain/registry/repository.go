package registry

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence surface the wizard's submit step and the
// attendance importer depend on. Inserts are issued one record at a time;
// callers own the sequencing and abort-on-first-failure policy.
type Repository interface {
	InsertDistrict(ctx context.Context, d *District) error
	InsertSchool(ctx context.Context, s *School) error
	InsertStaffMember(ctx context.Context, m *StaffMember) error
	InsertStudent(ctx context.Context, s *Student) error
	InsertClassroom(ctx context.Context, c *Classroom) error
	InsertEnrollment(ctx context.Context, e *Enrollment) error
	InsertAttendanceEntry(ctx context.Context, a *AttendanceEntry) error
	InsertAssessmentResult(ctx context.Context, r *AssessmentResult) error

	// FindStudentByExternalID resolves a school-issued student ID to the
	// registry ID. The second return is false when no student matches.
	FindStudentByExternalID(ctx context.Context, schoolStudentID string) (uuid.UUID, bool, error)
}
