package store

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calibrant/gdtbench/gdt"
)

// These tests drive the store against a mocked connection so driver
// failures can be produced on demand.

func TestCreateProjectWrapsInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO projects").
		WillReturnError(assert.AnError)

	s := New(db, nil)
	err = s.CreateProject(&gdt.Project{Title: "Broken", Units: gdt.UnitMM})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "insert project")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProjectNoRowsIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE projects SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := New(db, nil)
	err = s.UpdateProject(&gdt.Project{ID: 99, Title: "Ghost", Units: gdt.UnitMM})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAnnotationNoRowsIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM annotations").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := New(db, nil)
	assert.ErrorIs(t, s.DeleteAnnotation(42), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProjectsWrapsQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM projects").
		WillReturnError(assert.AnError)

	s := New(db, nil)
	_, err = s.ListProjects("")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	assert.NoError(t, mock.ExpectationsWereMet())
}
