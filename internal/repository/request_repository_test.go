package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/rota-api/internal/models"
)

func newRequestRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func requestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "employee_id", "kind", "value", "created_at", "updated_at", "employee_name"}).
		AddRow("q1", "e1", "OFF_SPECIFIC_DATE", "2025-12-25", time.Now(), time.Now(), "Alice Doe")
}

func TestScheduleRequestRepositoryListJoinsEmployeeName(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewScheduleRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_requests r JOIN employees e ON e.id = r.employee_id WHERE 1=1 ORDER BY r.created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(requestRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedule_requests r JOIN employees e ON e.id = r.employee_id WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ScheduleRequestFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Alice Doe", list[0].EmployeeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRequestRepositoryListFiltersByEmployee(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewScheduleRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND r.employee_id = $1")).
		WithArgs("e1").
		WillReturnRows(requestRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ScheduleRequestFilter{EmployeeID: "e1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRequestRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewScheduleRequestRepository(db)

	mock.ExpectExec("INSERT INTO schedule_requests").
		WithArgs(sqlmock.AnyArg(), "e1", "OFF_RECURRING_DAY", "Monday", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.ScheduleRequest{EmployeeID: "e1", Kind: "OFF_RECURRING_DAY", Value: "Monday"}
	require.NoError(t, repo.Create(context.Background(), request))
	assert.NotEmpty(t, request.ID)

	mock.ExpectExec("DELETE FROM schedule_requests WHERE id").
		WithArgs(request.ID).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), request.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
