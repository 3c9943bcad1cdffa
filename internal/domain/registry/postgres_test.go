package registry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepository(mock), mock
}

func TestInsertDistrict(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO districts").
		WithArgs("Lakeside Unified", "LUSD-01", "", "Lakeside", "CA", "", "", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(id, now))

	d := &District{Name: "Lakeside Unified", Code: "LUSD-01", City: "Lakeside", State: "CA"}
	require.NoError(t, repo.InsertDistrict(context.Background(), d))
	assert.Equal(t, id, d.ID)
	assert.Equal(t, now, d.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertStudent(t *testing.T) {
	repo, mock := newMockRepo(t)

	t.Run("scan fills generated columns", func(t *testing.T) {
		id := uuid.New()
		grade := 3
		mock.ExpectQuery("INSERT INTO students").
			WithArgs("S1", "Avery", "Kim", &grade, "2016-04-09", "", "", "parent@example.com", "", "").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(id, time.Now()))

		s := &Student{
			SchoolStudentID: "S1",
			FirstName:       "Avery",
			LastName:        "Kim",
			GradeLevel:      &grade,
			BirthDate:       "2016-04-09",
			Guardian1Email:  "parent@example.com",
		}
		require.NoError(t, repo.InsertStudent(context.Background(), s))
		assert.Equal(t, id, s.ID)
	})

	t.Run("missing grade level binds NULL", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO students").
			WithArgs("S3", "Noah", "Osei", (*int)(nil), "", "", "", "", "", "").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), time.Now()))

		s := &Student{SchoolStudentID: "S3", FirstName: "Noah", LastName: "Osei"}
		require.NoError(t, repo.InsertStudent(context.Background(), s))
	})

	t.Run("database error wrapped with student id", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO students").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(fmt.Errorf("duplicate key"))

		err := repo.InsertStudent(context.Background(), &Student{SchoolStudentID: "S2"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"S2"`)
		assert.Contains(t, err.Error(), "duplicate key")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAttendanceEntry(t *testing.T) {
	repo, mock := newMockRepo(t)
	studentID := uuid.New()

	mock.ExpectQuery("INSERT INTO attendance_entries").
		WithArgs(&studentID, "S1", "2024-09-03", "absent", "sick").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), time.Now()))

	entry := &AttendanceEntry{
		StudentID:       &studentID,
		SchoolStudentID: "S1",
		RecordDate:      "2024-09-03",
		Status:          "absent",
		Notes:           "sick",
	}
	require.NoError(t, repo.InsertAttendanceEntry(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindStudentByExternalID(t *testing.T) {
	repo, mock := newMockRepo(t)

	t.Run("known student", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery("SELECT id FROM students").
			WithArgs("S1").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

		got, found, err := repo.FindStudentByExternalID(context.Background(), "S1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, id, got)
	})

	t.Run("unknown student is not an error", func(t *testing.T) {
		mock.ExpectQuery("SELECT id FROM students").
			WithArgs("NOPE").
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		got, found, err := repo.FindStudentByExternalID(context.Background(), "NOPE")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, uuid.Nil, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
