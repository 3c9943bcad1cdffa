// Package wizard coordinates the onboarding steps. Each step finishes by
// handing its finalized record list to the coordinator (explicit ownership
// transfer, no collection shared between steps), and the final submit pass
// persists everything sequentially.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/enrollhub/onboarding-api/internal/domain/attendance"
	"github.com/enrollhub/onboarding-api/internal/domain/importer/session"
	"github.com/enrollhub/onboarding-api/internal/domain/registry"
	"github.com/enrollhub/onboarding-api/internal/domain/schema"
)

// Collections holds the finalized record lists, one per entity, in the
// order the submit pass persists them.
type Collections struct {
	Districts   []registry.District
	Schools     []registry.School
	Staff       []registry.StaffMember
	Students    []registry.Student
	Classrooms  []registry.Classroom
	Enrollments []registry.Enrollment
	Attendance  []registry.AttendanceEntry
	Assessments []registry.AssessmentResult
}

// SubmitResult reports how far a submit pass got.
type SubmitResult struct {
	Inserted int    `json:"inserted"`
	Failed   bool   `json:"failed"`
	Error    string `json:"error,omitempty"`
}

// Coordinator owns the wizard's accumulated collections and the final
// persistence pass.
type Coordinator struct {
	repo   registry.Repository
	logger *slog.Logger

	mu          sync.Mutex
	collections Collections
}

// NewCoordinator creates a wizard coordinator over the given registry.
func NewCoordinator(repo registry.Repository, logger *slog.Logger) *Coordinator {
	return &Coordinator{repo: repo, logger: logger}
}

// CompleteStep ingests a step's committed records under its explicit
// profile. The records replace the step's previous list: re-running a step
// re-finalizes it rather than appending duplicates.
func (c *Coordinator) CompleteStep(profileID schema.ProfileID, records []session.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch profileID {
	case schema.ProfileDistrict:
		c.collections.Districts = convertAll(records, buildDistrict)
	case schema.ProfileSchool:
		c.collections.Schools = convertAll(records, buildSchool)
	case schema.ProfileStaff:
		c.collections.Staff = convertAll(records, buildStaffMember)
	case schema.ProfileStudent:
		c.collections.Students = convertAll(records, buildStudent)
	case schema.ProfileClassroom:
		c.collections.Classrooms = convertAll(records, buildClassroom)
	case schema.ProfileEnrollment:
		c.collections.Enrollments = convertAll(records, buildEnrollment)
	case schema.ProfileAttendance:
		c.collections.Attendance = convertAll(records, buildAttendanceEntry)
	case schema.ProfileAssessment:
		c.collections.Assessments = convertAll(records, buildAssessmentResult)
	default:
		return fmt.Errorf("unknown import profile %q", profileID)
	}

	c.logger.Info("wizard step finalized", "profile", profileID, "records", len(records))
	return nil
}

// CompleteAttendanceImport ingests records produced by the domain importer's
// all-or-nothing path.
func (c *Coordinator) CompleteAttendanceImport(records []attendance.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]registry.AttendanceEntry, 0, len(records))
	for _, rec := range records {
		id := rec.StudentID
		entries = append(entries, registry.AttendanceEntry{
			StudentID:       &id,
			SchoolStudentID: rec.SchoolStudentID,
			RecordDate:      rec.RecordDate,
			Status:          rec.Status,
			Notes:           rec.Notes,
		})
	}
	c.collections.Attendance = entries
	c.logger.Info("attendance batch finalized", "records", len(entries))
}

// Collections returns a copy of the accumulated collections.
func (c *Coordinator) Collections() Collections {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collections
}

// Submit persists every collection in dependency order with one insert per
// record. The first failure aborts the remaining inserts and surfaces the
// raw error; records already inserted stay inserted — there is no
// transaction and no rollback. A collection that persists completely is
// cleared, so repeating submit after a partial failure retries only the
// collections that never finished instead of re-inserting earlier ones.
func (c *Coordinator) Submit(ctx context.Context) *SubmitResult {
	c.mu.Lock()
	cols := c.collections
	c.mu.Unlock()

	result := &SubmitResult{}

	fail := func(err error) *SubmitResult {
		c.logger.Error("wizard submit aborted", "inserted", result.Inserted, "error", err)
		result.Failed = true
		result.Error = err.Error()
		return result
	}
	done := func(clear func(*Collections)) {
		c.mu.Lock()
		clear(&c.collections)
		c.mu.Unlock()
	}

	for i := range cols.Districts {
		if err := c.repo.InsertDistrict(ctx, &cols.Districts[i]); err != nil {
			return fail(err)
		}
		result.Inserted++
	}
	done(func(col *Collections) { col.Districts = nil })

	for i := range cols.Schools {
		if err := c.repo.InsertSchool(ctx, &cols.Schools[i]); err != nil {
			return fail(err)
		}
		result.Inserted++
	}
	done(func(col *Collections) { col.Schools = nil })

	for i := range cols.Staff {
		if err := c.repo.InsertStaffMember(ctx, &cols.Staff[i]); err != nil {
			return fail(err)
		}
		result.Inserted++
	}
	done(func(col *Collections) { col.Staff = nil })

	for i := range cols.Students {
		if err := c.repo.InsertStudent(ctx, &cols.Students[i]); err != nil {
			return fail(err)
		}
		result.Inserted++
	}
	done(func(col *Collections) { col.Students = nil })

	for i := range cols.Classrooms {
		if err := c.repo.InsertClassroom(ctx, &cols.Classrooms[i]); err != nil {
			return fail(err)
		}
		result.Inserted++
	}
	done(func(col *Collections) { col.Classrooms = nil })

	for i := range cols.Enrollments {
		if err := c.repo.InsertEnrollment(ctx, &cols.Enrollments[i]); err != nil {
			return fail(err)
		}
		result.Inserted++
	}
	done(func(col *Collections) { col.Enrollments = nil })

	for i := range cols.Attendance {
		if err := c.repo.InsertAttendanceEntry(ctx, &cols.Attendance[i]); err != nil {
			return fail(err)
		}
		result.Inserted++
	}
	done(func(col *Collections) { col.Attendance = nil })

	for i := range cols.Assessments {
		if err := c.repo.InsertAssessmentResult(ctx, &cols.Assessments[i]); err != nil {
			return fail(err)
		}
		result.Inserted++
	}
	done(func(col *Collections) { col.Assessments = nil })

	c.logger.Info("wizard submit complete", "inserted", result.Inserted)
	return result
}

func convertAll[T any](records []session.Record, build func(session.Record) T) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		out = append(out, build(rec))
	}
	return out
}
