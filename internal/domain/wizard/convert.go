package wizard

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/enrollhub/onboarding-api/internal/domain/importer/session"
	"github.com/enrollhub/onboarding-api/internal/domain/registry"
)

// The build* helpers shape committed import records into registry entities.
// Values arrive pre-validated by the import pipeline; anything that still
// fails to parse here (a grade on a row the user chose to include despite
// its issues) degrades to nil rather than blocking the step.

func buildDistrict(rec session.Record) registry.District {
	return registry.District{
		Name:    rec["district_name"],
		Code:    rec["district_code"],
		Address: rec["address"],
		City:    rec["city"],
		State:   rec["state"],
		Zip:     rec["zip"],
		Phone:   rec["phone"],
		Website: rec["website"],
	}
}

func buildSchool(rec session.Record) registry.School {
	return registry.School{
		DistrictID:     parseUUID(rec["district_id"]),
		Name:           rec["school_name"],
		Code:           rec["school_code"],
		GradeLow:       parseInt(rec["grade_low"]),
		GradeHigh:      parseInt(rec["grade_high"]),
		Address:        rec["address"],
		City:           rec["city"],
		State:          rec["state"],
		Zip:            rec["zip"],
		Phone:          rec["phone"],
		PrincipalEmail: rec["principal_email"],
	}
}

func buildStaffMember(rec session.Record) registry.StaffMember {
	return registry.StaffMember{
		FirstName:  rec["first_name"],
		LastName:   rec["last_name"],
		Email:      rec["email"],
		Role:       rec["role"],
		Phone:      rec["phone"],
		SchoolCode: rec["school_code"],
	}
}

func buildStudent(rec session.Record) registry.Student {
	return registry.Student{
		SchoolStudentID: rec["school_student_id"],
		FirstName:       rec["first_name"],
		LastName:        rec["last_name"],
		GradeLevel:      parseInt(rec["grade_level"]),
		BirthDate:       rec["birth_date"],
		Gender:          rec["gender"],
		Guardian1Name:   rec["guardian1_name"],
		Guardian1Email:  rec["guardian1_email"],
		Guardian2Name:   rec["guardian2_name"],
		Guardian2Email:  rec["guardian2_email"],
	}
}

func buildClassroom(rec session.Record) registry.Classroom {
	return registry.Classroom{
		Name:         rec["classroom_name"],
		SchoolCode:   rec["school_code"],
		GradeLevel:   parseInt(rec["grade_level"]),
		Subject:      rec["subject"],
		TeacherEmail: rec["teacher_email"],
		Period:       rec["period"],
	}
}

func buildEnrollment(rec session.Record) registry.Enrollment {
	return registry.Enrollment{
		SchoolStudentID: rec["school_student_id"],
		ClassroomName:   rec["classroom_name"],
		EnrollmentDate:  rec["enrollment_date"],
		Status:          rec["status"],
	}
}

func buildAttendanceEntry(rec session.Record) registry.AttendanceEntry {
	return registry.AttendanceEntry{
		SchoolStudentID: rec["school_student_id"],
		RecordDate:      rec["record_date"],
		Status:          rec["status"],
		Notes:           rec["notes"],
	}
}

func buildAssessmentResult(rec session.Record) registry.AssessmentResult {
	return registry.AssessmentResult{
		SchoolStudentID:  rec["school_student_id"],
		AssessmentName:   rec["assessment_name"],
		AssessmentDate:   rec["assessment_date"],
		Score:            rec["score"],
		MaxScore:         rec["max_score"],
		ProficiencyLevel: rec["proficiency_level"],
	}
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func parseUUID(s string) *uuid.UUID {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
