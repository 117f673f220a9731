package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
	"github.com/allisson/appconfig/internal/testutil"
)

type keyRepository interface {
	Create(ctx context.Context, key *keyDomain.Key) error
	GetActive(ctx context.Context, keyType string) (*keyDomain.Key, error)
	GetByTypeAndVersion(ctx context.Context, keyType string, version uint) (*keyDomain.Key, error)
	GetMaxVersion(ctx context.Context, keyType string) (uint, error)
	DemoteActive(ctx context.Context, keyType string, exceptVersion uint) (int64, error)
	ListByType(ctx context.Context, keyType string) ([]*keyDomain.Key, error)
}

func TestKeyRepositoryIntegration(t *testing.T) {
	tests := []struct {
		driver string
		skip   func(t *testing.T)
		setup  func(t *testing.T) *sql.DB
		repo   func(db *sql.DB) keyRepository
	}{
		{
			driver: "postgres",
			skip:   testutil.SkipIfNoPostgres,
			setup:  testutil.SetupPostgresDB,
			repo:   func(db *sql.DB) keyRepository { return NewPostgreSQLKeyRepository(db) },
		},
		{
			driver: "mysql",
			skip:   testutil.SkipIfNoMySQL,
			setup:  testutil.SetupMySQLDB,
			repo:   func(db *sql.DB) keyRepository { return NewMySQLKeyRepository(db) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			tt.skip(t)

			db := tt.setup(t)
			defer testutil.TeardownDB(t, db)

			ctx := context.Background()
			repo := tt.repo(db)

			testutil.CreateTestKeyRecord(t, db, tt.driver, "billing", 1, string(keyDomain.StatusActive))

			now := time.Now().UTC().Truncate(time.Second)
			second := &keyDomain.Key{
				ID:           uuid.Must(uuid.NewV7()),
				Type:         "billing",
				Version:      2,
				HashedSecret: "salt:hash",
				HashBytes:    32,
				Status:       keyDomain.StatusActive,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			require.NoError(t, repo.Create(ctx, second))

			duplicate := *second
			duplicate.ID = uuid.Must(uuid.NewV7())
			assert.ErrorIs(t, repo.Create(ctx, &duplicate), keyDomain.ErrVersionConflict)

			demoted, err := repo.DemoteActive(ctx, "billing", 2)
			require.NoError(t, err)
			assert.Equal(t, int64(1), demoted)

			active, err := repo.GetActive(ctx, "billing")
			require.NoError(t, err)
			assert.Equal(t, second.ID, active.ID)

			first, err := repo.GetByTypeAndVersion(ctx, "billing", 1)
			require.NoError(t, err)
			assert.Equal(t, keyDomain.StatusInactive, first.Status)

			maxVersion, err := repo.GetMaxVersion(ctx, "billing")
			require.NoError(t, err)
			assert.Equal(t, uint(2), maxVersion)

			keys, err := repo.ListByType(ctx, "billing")
			require.NoError(t, err)
			require.Len(t, keys, 2)
			assert.Equal(t, uint(2), keys[0].Version)

			_, err = repo.GetActive(ctx, "unknown")
			assert.ErrorIs(t, err, keyDomain.ErrKeyNotExist)
		})
	}
}
