package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
)

func newPlanMock(t *testing.T) (*PlanRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPlanRepository(db), mock
}

func TestPlanRepository_LoadInput(t *testing.T) {
	repo, mock := newPlanMock(t)
	planID := uuid.New()

	mock.ExpectQuery("FROM timetable_plans").
		WithArgs(planID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"allow_free_periods", "max_solve_seconds"}).AddRow(true, 12.5))
	mock.ExpectQuery("FROM plan_working_days").
		WithArgs(planID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"day", "start_hour", "total_hours"}).
			AddRow("Monday", 9, 6).
			AddRow("Tuesday", 10, 4))
	mock.ExpectQuery("FROM plan_teachers").
		WithArgs(planID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"teacher", "start_hour", "end_hour"}).
			AddRow("Smith", 9, 12))
	mock.ExpectQuery("FROM plan_sections").
		WithArgs(planID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"year", "section", "room", "capacity"}).
			AddRow("Year1", "A", "R101", 30).
			AddRow("Year1", "B", nil, 28))
	mock.ExpectQuery("FROM plan_courses").
		WithArgs(planID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"subject", "year", "section", "teacher", "lectures", "duration"}).
			AddRow("Math", "Year1", "A", "Smith", 3, 1).
			AddRow("Lab", "Year1", nil, "Lee", 1, 2))

	in, err := repo.LoadInput(context.Background(), planID)
	require.NoError(t, err)

	assert.True(t, in.AllowFreePeriods)
	assert.Equal(t, 12.5, in.MaxSolveSeconds)
	assert.Equal(t, []model.WorkingDay{
		{Day: "Monday", StartHour: 9, TotalHours: 6},
		{Day: "Tuesday", StartHour: 10, TotalHours: 4},
	}, in.WorkingDays)
	assert.Equal(t, map[string]model.TeacherAvailability{"Smith": {StartHour: 9, EndHour: 12}}, in.Teachers)
	require.Len(t, in.Sections, 2)
	assert.Equal(t, "R101", in.Sections[0].Room)
	assert.Empty(t, in.Sections[1].Room)
	require.Len(t, in.Courses, 2)
	assert.Equal(t, "Math", in.Courses[0].Subject)
	assert.Empty(t, in.Courses[1].Section)
	assert.Equal(t, model.DefaultSection, in.Courses[1].Key().Section)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepository_NotFound(t *testing.T) {
	repo, mock := newPlanMock(t)
	planID := uuid.New()

	mock.ExpectQuery("FROM timetable_plans").
		WithArgs(planID.String()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.LoadInput(context.Background(), planID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepository_DatabaseError(t *testing.T) {
	repo, mock := newPlanMock(t)
	planID := uuid.New()
	boom := errors.New("connection reset")

	mock.ExpectQuery("FROM timetable_plans").
		WithArgs(planID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"allow_free_periods", "max_solve_seconds"}).AddRow(false, 0))
	mock.ExpectQuery("FROM plan_working_days").
		WithArgs(planID.String()).
		WillReturnError(boom)

	_, err := repo.LoadInput(context.Background(), planID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeDatabaseError))
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepository_RowError(t *testing.T) {
	repo, mock := newPlanMock(t)
	planID := uuid.New()

	mock.ExpectQuery("FROM timetable_plans").
		WithArgs(planID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"allow_free_periods", "max_solve_seconds"}).AddRow(false, 0))
	mock.ExpectQuery("FROM plan_working_days").
		WithArgs(planID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"day", "start_hour", "total_hours"}).
			AddRow("Monday", 9, 6).
			RowError(0, errors.New("bad row")))

	_, err := repo.LoadInput(context.Background(), planID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeDatabaseError))
}
