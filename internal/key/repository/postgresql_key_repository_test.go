package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/appconfig/internal/database"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

var keyColumnNames = []string{
	"id", "type", "version", "hashed_secret", "hash_bytes", "status", "duration_amount", "duration_unit",
	"expire_at", "created_at", "updated_at", "deleted_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newRotatingKey() *keyDomain.Key {
	now := time.Now().UTC()
	expireAt := now.Add(30 * 24 * time.Hour)
	amount := 30
	unit := keyDomain.UnitDay
	return &keyDomain.Key{
		ID:             uuid.Must(uuid.NewV7()),
		Type:           "billing",
		Version:        2,
		HashedSecret:   "salt:hash",
		HashBytes:      32,
		Status:         keyDomain.StatusActive,
		DurationAmount: &amount,
		DurationUnit:   &unit,
		ExpireAt:       &expireAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestPostgreSQLKeyRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)
		key := newRotatingKey()

		mock.ExpectExec("INSERT INTO key_records").
			WithArgs(
				key.ID, "billing", key.Version, "salt:hash", 32, "ACTIVE",
				sql.NullInt64{Int64: 30, Valid: true}, sql.NullString{String: "day", Valid: true},
				key.ExpireAt, key.CreatedAt, key.UpdatedAt, key.DeletedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, key))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_VersionConflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)

		mock.ExpectExec("INSERT INTO key_records").WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, newRotatingKey())
		assert.ErrorIs(t, err, keyDomain.ErrVersionConflict)
	})

	t.Run("Error_Other", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)

		mock.ExpectExec("INSERT INTO key_records").WillReturnError(errors.New("connection reset"))

		err := repo.Create(ctx, newRotatingKey())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, keyDomain.ErrVersionConflict)
	})

	t.Run("Success_JoinsTransaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO key_records").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := database.NewTxManager(db).WithTx(ctx, func(txCtx context.Context) error {
			return repo.Create(txCtx, newRotatingKey())
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLKeyRepository_GetActive(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)
		id := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		rows := sqlmock.NewRows(keyColumnNames).
			AddRow(id.String(), "billing", 3, "salt:hash", 48, "ACTIVE", 30, "day", now, now, now, nil)
		mock.ExpectQuery("FROM key_records").WithArgs("billing", "ACTIVE").WillReturnRows(rows)

		key, err := repo.GetActive(ctx, "billing")
		require.NoError(t, err)
		assert.Equal(t, id, key.ID)
		assert.Equal(t, uint(3), key.Version)
		assert.Equal(t, 48, key.HashBytes)
		assert.Equal(t, keyDomain.StatusActive, key.Status)
		assert.Equal(t, &keyDomain.Duration{Amount: 30, Unit: keyDomain.UnitDay}, key.Duration())
		require.NotNil(t, key.ExpireAt)
		assert.Nil(t, key.DeletedAt)
	})

	t.Run("Success_NeverExpires", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)
		now := time.Now().UTC()

		rows := sqlmock.NewRows(keyColumnNames).
			AddRow(uuid.NewString(), "billing", 1, "salt:hash", 32, "ACTIVE", nil, nil, nil, now, now, nil)
		mock.ExpectQuery("FROM key_records").WillReturnRows(rows)

		key, err := repo.GetActive(ctx, "billing")
		require.NoError(t, err)
		assert.Nil(t, key.Duration())
		assert.Nil(t, key.ExpireAt)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)

		mock.ExpectQuery("FROM key_records").WillReturnRows(sqlmock.NewRows(keyColumnNames))

		_, err := repo.GetActive(ctx, "billing")
		assert.ErrorIs(t, err, keyDomain.ErrKeyNotExist)
	})
}

func TestPostgreSQLKeyRepository_GetByTypeAndVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(keyColumnNames).
		AddRow(uuid.NewString(), "billing", 1, "salt:hash", 32, "INACTIVE", nil, nil, nil, now, now, nil)
	mock.ExpectQuery("status <> \\$3").WithArgs("billing", uint(1), "RETIRED").WillReturnRows(rows)

	key, err := repo.GetByTypeAndVersion(context.Background(), "billing", 1)
	require.NoError(t, err)
	assert.Equal(t, keyDomain.StatusInactive, key.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLKeyRepository_GetMaxVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM key_records WHERE type = $1")).
		WithArgs("billing").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(7))

	version, err := repo.GetMaxVersion(context.Background(), "billing")
	require.NoError(t, err)
	assert.Equal(t, uint(7), version)
}

func TestPostgreSQLKeyRepository_Updates(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())

	t.Run("Success_UpdateStatus", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)

		mock.ExpectExec("UPDATE key_records SET status").
			WithArgs("RETIRED", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateStatus(ctx, id, keyDomain.StatusRetired))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_UpdateHashedSecret", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)

		mock.ExpectExec("UPDATE key_records SET hashed_secret").
			WithArgs("new:hash", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateHashedSecret(ctx, id, "new:hash"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_DemoteActive", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)

		mock.ExpectExec("UPDATE key_records SET status").
			WithArgs("INACTIVE", sqlmock.AnyArg(), "billing", "ACTIVE", uint(4)).
			WillReturnResult(sqlmock.NewResult(0, 2))

		demoted, err := repo.DemoteActive(ctx, "billing", 4)
		require.NoError(t, err)
		assert.Equal(t, int64(2), demoted)
	})

	t.Run("Success_Delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)

		mock.ExpectExec("DELETE FROM key_records").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(ctx, id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLKeyRepository_Lists(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Success_ListByType", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)

		rows := sqlmock.NewRows(keyColumnNames).
			AddRow(uuid.NewString(), "billing", 2, "s:h", 32, "ACTIVE", nil, nil, nil, now, now, nil).
			AddRow(uuid.NewString(), "billing", 1, "s:h", 32, "INACTIVE", nil, nil, nil, now, now, nil)
		mock.ExpectQuery("ORDER BY version DESC").WithArgs("billing").WillReturnRows(rows)

		keys, err := repo.ListByType(ctx, "billing")
		require.NoError(t, err)
		require.Len(t, keys, 2)
		assert.Equal(t, uint(2), keys[0].Version)
		assert.Equal(t, uint(1), keys[1].Version)
	})

	t.Run("Success_ListExpired", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)

		rows := sqlmock.NewRows(keyColumnNames).
			AddRow(uuid.NewString(), "billing", 1, "s:h", 32, "INACTIVE", 1, "hour", now, now, now, nil)
		mock.ExpectQuery("expire_at <= \\$2").WithArgs("RETIRED", now, 10).WillReturnRows(rows)

		keys, err := repo.ListExpired(ctx, now, 10)
		require.NoError(t, err)
		assert.Len(t, keys, 1)
	})

	t.Run("Success_Empty", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLKeyRepository(db)

		mock.ExpectQuery("FROM key_records").WillReturnRows(sqlmock.NewRows(keyColumnNames))

		keys, err := repo.ListByType(ctx, "billing")
		require.NoError(t, err)
		assert.Empty(t, keys)
		assert.NotNil(t, keys)
	})
}
