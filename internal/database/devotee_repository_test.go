package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templetrust/seva-booking-backend/internal/models"
)

func devoteeRow(d *models.Devotee) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "mobile", "full_name", "gothram", "state", "district", "taluk",
		"pincode", "place", "full_address", "total_amount_spent", "seva_count",
		"created_at", "updated_at",
	}).AddRow(
		d.ID, d.Mobile, d.FullName, d.Gothram, d.State, d.District, d.Taluk,
		d.Pincode, d.Place, d.FullAddress, d.TotalAmountSpent, d.SevaCount,
		now, now,
	)
}

func sampleDevotee() *models.Devotee {
	return &models.Devotee{
		ID:               uuid.New(),
		Mobile:           "9876543210",
		FullName:         "Ramesh Kulkarni",
		TotalAmountSpent: 350,
		SevaCount:        2,
	}
}

func TestUpsertDevotee(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDevoteeRepository(db, testLogger())

	profile := models.DevoteeProfile{
		FullName: "Ramesh Kulkarni",
		Gothram:  "Bharadwaja",
		District: "Belagavi",
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO devotees`).
		WithArgs(sqlmock.AnyArg(), "9876543210", "Ramesh Kulkarni", "Bharadwaja",
			"", "Belagavi", "", "", "", "", 250.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	err = repo.upsertTx(tx, "9876543210", profile, 250)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDevoteeByMobile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDevoteeRepository(db, testLogger())

	t.Run("Success", func(t *testing.T) {
		devotee := sampleDevotee()

		mock.ExpectQuery(`SELECT (.+) FROM devotees WHERE mobile`).
			WithArgs(devotee.Mobile).
			WillReturnRows(devoteeRow(devotee))

		got, err := repo.GetByMobile(devotee.Mobile)
		require.NoError(t, err)
		assert.Equal(t, devotee.ID, got.ID)
		assert.Equal(t, 350.0, got.TotalAmountSpent)
		assert.Equal(t, 2, got.SevaCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM devotees WHERE mobile`).
			WithArgs("9000000000").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.GetByMobile("9000000000")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateDevotee(t *testing.T) {
	t.Run("Mobile Rename Repoints Bookings", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDevoteeRepository(db, testLogger())

		current := sampleDevotee()
		newMobile := "9999999999"

		updated := *current
		updated.Mobile = newMobile

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM devotees WHERE id = \$1 FOR UPDATE`).
			WithArgs(current.ID).
			WillReturnRows(devoteeRow(current))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM devotees WHERE mobile`).
			WithArgs(newMobile, current.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`UPDATE bookings SET guest_phone`).
			WithArgs(newMobile, current.Mobile).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectQuery(`UPDATE devotees`).
			WithArgs(newMobile, current.ID).
			WillReturnRows(devoteeRow(&updated))
		mock.ExpectCommit()

		got, err := repo.Update(current.ID, &models.UpdateDevoteeRequest{Mobile: &newMobile})
		require.NoError(t, err)
		assert.Equal(t, newMobile, got.Mobile)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Mobile Collision Aborts Rename", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDevoteeRepository(db, testLogger())

		current := sampleDevotee()
		newMobile := "9999999999"

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM devotees WHERE id = \$1 FOR UPDATE`).
			WithArgs(current.ID).
			WillReturnRows(devoteeRow(current))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM devotees WHERE mobile`).
			WithArgs(newMobile, current.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		got, err := repo.Update(current.ID, &models.UpdateDevoteeRequest{Mobile: &newMobile})
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrDuplicateMobile)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unique Violation Maps To Duplicate Mobile", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDevoteeRepository(db, testLogger())

		current := sampleDevotee()
		name := "Suresh Patil"

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM devotees WHERE id = \$1 FOR UPDATE`).
			WithArgs(current.ID).
			WillReturnRows(devoteeRow(current))
		mock.ExpectQuery(`UPDATE devotees`).
			WithArgs(name, current.ID).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "devotees_mobile_key"})
		mock.ExpectRollback()

		got, err := repo.Update(current.ID, &models.UpdateDevoteeRequest{FullName: &name})
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrDuplicateMobile)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDevoteeRepository(db, testLogger())

		devoteeID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM devotees WHERE id = \$1 FOR UPDATE`).
			WithArgs(devoteeID).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		got, err := repo.Update(devoteeID, &models.UpdateDevoteeRequest{})
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteDevotee(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDevoteeRepository(db, testLogger())

	t.Run("Success", func(t *testing.T) {
		devoteeID := uuid.New()

		mock.ExpectExec(`DELETE FROM devotees WHERE id`).
			WithArgs(devoteeID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(devoteeID)
		assert.NoError(t, err)
	})

	t.Run("Not Found", func(t *testing.T) {
		devoteeID := uuid.New()

		mock.ExpectExec(`DELETE FROM devotees WHERE id`).
			WithArgs(devoteeID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(devoteeID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
