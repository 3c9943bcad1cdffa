// Package schema defines the import profiles for the onboarding wizard.
// Each profile names the canonical fields of one record type, which of them
// are required, and how typed values should be checked during validation.
package schema

import "fmt"

// FieldType is a validation hint for a canonical field's value.
type FieldType string

const (
	TypeText    FieldType = "text"
	TypeInteger FieldType = "integer"
	TypeNumeric FieldType = "numeric"
	TypeUUID    FieldType = "uuid"
)

// ProfileID identifies a record type a wizard step imports. The owning step
// selects its profile explicitly; profiles are never inferred from the shape
// of uploaded data.
type ProfileID string

const (
	ProfileDistrict   ProfileID = "district"
	ProfileSchool     ProfileID = "school"
	ProfileStaff      ProfileID = "staff"
	ProfileStudent    ProfileID = "student"
	ProfileClassroom  ProfileID = "classroom"
	ProfileEnrollment ProfileID = "enrollment"
	ProfileAttendance ProfileID = "attendance"
	ProfileAssessment ProfileID = "assessment"
)

// Profile describes one importable record type.
type Profile struct {
	ID          ProfileID
	Description string

	// Fields is the ordered set of canonical fields a column can map to.
	Fields []string

	// Required fields must be mapped and non-blank on every row.
	Required []string

	// TypeHints drive the numeric/integer/uuid format checks. Fields
	// without a hint are treated as free text.
	TypeHints map[string]FieldType

	// Template holds one example value per field. It is shown to the user
	// next to the mapping editor and is never validated against.
	Template map[string]string
}

var profiles = map[ProfileID]*Profile{
	ProfileDistrict: {
		ID:          ProfileDistrict,
		Description: "School districts",
		Fields: []string{
			"district_name", "district_code", "address", "city", "state",
			"zip", "phone", "website",
		},
		Required: []string{"district_name"},
		TypeHints: map[string]FieldType{
			"zip": TypeText,
		},
		Template: map[string]string{
			"district_name": "Lakeside Unified District",
			"district_code": "LUSD-01",
			"city":          "Lakeside",
			"state":         "CA",
		},
	},
	ProfileSchool: {
		ID:          ProfileSchool,
		Description: "Schools within a district",
		Fields: []string{
			"school_name", "school_code", "district_id", "grade_low",
			"grade_high", "address", "city", "state", "zip", "phone",
			"principal_email",
		},
		Required: []string{"school_name", "school_code"},
		TypeHints: map[string]FieldType{
			"district_id": TypeUUID,
			"grade_low":   TypeInteger,
			"grade_high":  TypeInteger,
		},
		Template: map[string]string{
			"school_name":     "Lakeside Elementary",
			"school_code":     "LES",
			"grade_low":       "0",
			"grade_high":      "5",
			"principal_email": "principal@lakeside.example.org",
		},
	},
	ProfileStaff: {
		ID:          ProfileStaff,
		Description: "Teachers and other school staff",
		Fields: []string{
			"first_name", "last_name", "email", "role", "phone",
			"school_code",
		},
		Required: []string{"first_name", "last_name", "email"},
		TypeHints: map[string]FieldType{},
		Template: map[string]string{
			"first_name": "Dana",
			"last_name":  "Reyes",
			"email":      "dreyes@lakeside.example.org",
			"role":       "teacher",
		},
	},
	ProfileStudent: {
		ID:          ProfileStudent,
		Description: "Students enrolled at a school",
		Fields: []string{
			"school_student_id", "first_name", "last_name", "grade_level",
			"birth_date", "gender", "guardian1_name", "guardian1_email",
			"guardian2_name", "guardian2_email",
		},
		Required: []string{"school_student_id", "first_name", "last_name"},
		TypeHints: map[string]FieldType{
			"grade_level": TypeInteger,
		},
		Template: map[string]string{
			"school_student_id": "S10234",
			"first_name":        "Avery",
			"last_name":         "Kim",
			"grade_level":       "3",
			"birth_date":        "2016-04-09",
			"guardian1_email":   "parent@example.com",
		},
	},
	ProfileClassroom: {
		ID:          ProfileClassroom,
		Description: "Classrooms and class sections",
		Fields: []string{
			"classroom_name", "school_code", "grade_level", "subject",
			"teacher_email", "period",
		},
		Required: []string{"classroom_name"},
		TypeHints: map[string]FieldType{
			"grade_level": TypeInteger,
		},
		Template: map[string]string{
			"classroom_name": "3B Homeroom",
			"grade_level":    "3",
			"subject":        "Homeroom",
			"teacher_email":  "dreyes@lakeside.example.org",
		},
	},
	ProfileEnrollment: {
		ID:          ProfileEnrollment,
		Description: "Student-to-classroom enrollments",
		Fields: []string{
			"school_student_id", "classroom_name", "enrollment_date",
			"status",
		},
		Required: []string{"school_student_id", "classroom_name"},
		TypeHints: map[string]FieldType{},
		Template: map[string]string{
			"school_student_id": "S10234",
			"classroom_name":    "3B Homeroom",
			"enrollment_date":   "2024-08-19",
			"status":            "active",
		},
	},
	ProfileAttendance: {
		ID:          ProfileAttendance,
		Description: "Daily attendance records",
		Fields: []string{
			"school_student_id", "record_date", "status", "notes",
		},
		Required: []string{"school_student_id", "record_date"},
		TypeHints: map[string]FieldType{},
		Template: map[string]string{
			"school_student_id": "S10234",
			"record_date":       "2024-09-03",
			"status":            "absent",
		},
	},
	ProfileAssessment: {
		ID:          ProfileAssessment,
		Description: "Assessment results",
		Fields: []string{
			"school_student_id", "assessment_name", "assessment_date",
			"score", "max_score", "proficiency_level",
		},
		Required: []string{"school_student_id", "assessment_name"},
		TypeHints: map[string]FieldType{
			"score":     TypeNumeric,
			"max_score": TypeNumeric,
		},
		Template: map[string]string{
			"school_student_id": "S10234",
			"assessment_name":   "Fall Reading Benchmark",
			"assessment_date":   "2024-10-01",
			"score":             "87.5",
			"max_score":         "100",
		},
	},
}

// Get returns the profile for the given ID.
func Get(id ProfileID) (*Profile, error) {
	p, ok := profiles[id]
	if !ok {
		return nil, fmt.Errorf("unknown import profile %q", id)
	}
	return p, nil
}

// All returns every registered profile ID in a stable order.
func All() []ProfileID {
	return []ProfileID{
		ProfileDistrict, ProfileSchool, ProfileStaff, ProfileStudent,
		ProfileClassroom, ProfileEnrollment, ProfileAttendance,
		ProfileAssessment,
	}
}

// HasField reports whether field is one of the profile's canonical fields.
func (p *Profile) HasField(field string) bool {
	for _, f := range p.Fields {
		if f == field {
			return true
		}
	}
	return false
}
