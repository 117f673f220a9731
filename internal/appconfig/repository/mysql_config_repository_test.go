package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configDomain "github.com/allisson/appconfig/internal/appconfig/domain"
	apperrors "github.com/allisson/appconfig/internal/errors"
)

func TestMySQLConfigRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_BinaryID", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLConfigRepository(db)
		config := newConfig()
		id, err := config.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO configs").
			WithArgs(
				id, "shop", "prod", config.Version, true, "1_AAAA",
				config.CreatedAt, config.UpdatedAt, config.DeletedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, config))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DuplicateVersion", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLConfigRepository(db)

		mock.ExpectExec("INSERT INTO configs").WillReturnError(&mysql.MySQLError{Number: 1062})

		err := repo.Create(ctx, newConfig())
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestMySQLConfigRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	configID := uuid.Must(uuid.NewV7())
	id, err := configID.MarshalBinary()
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLConfigRepository(db)
		now := time.Now().UTC()

		rows := sqlmock.NewRows(configColumnNames).
			AddRow(id, "shop", "prod", 2, true, "1_AAAA", now, now, nil)
		mock.ExpectQuery("FROM configs").WithArgs(id, "shop").WillReturnRows(rows)

		config, err := repo.GetByID(ctx, "shop", configID)
		require.NoError(t, err)
		assert.Equal(t, configID, config.ID)
		assert.Equal(t, uint(2), config.Version)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLConfigRepository(db)

		mock.ExpectQuery("FROM configs").WillReturnRows(sqlmock.NewRows(configColumnNames))

		_, err := repo.GetByID(ctx, "shop", configID)
		assert.ErrorIs(t, err, configDomain.ErrConfigNotExist)
	})
}

func TestMySQLConfigRepository_ListRevisions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLConfigRepository(db)
	configID := uuid.Must(uuid.NewV7())
	id, err := configID.MarshalBinary()
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "version", "is_use", "created_at"}).
		AddRow(id, 1, true, time.Now().UTC())
	mock.ExpectQuery("FROM configs").WithArgs("shop", "prod").WillReturnRows(rows)

	revisions, err := repo.ListRevisions(context.Background(), "shop", "prod")
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, configID, revisions[0].ID)
}
