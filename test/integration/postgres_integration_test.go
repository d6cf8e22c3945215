package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"archive-session-store/internal/entity"
	"archive-session-store/internal/model"
	"archive-session-store/internal/repository/contract"
	"archive-session-store/internal/repository/implementation"
	"archive-session-store/pkg/database"
	"archive-session-store/pkg/token"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormSessionRepository(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.AnalysisSession{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	repo := implementation.NewGormSessionRepository(gormDB, token.DefaultByteLength)
	ctx := context.Background()

	id, err := token.Generate(token.DefaultByteLength)
	assert.NoError(t, err)
	defer repo.Delete(ctx, id)

	createdAt := time.Now().Add(-48 * time.Hour)
	err = repo.Create(ctx, &entity.Session{
		Id:        id,
		CreatedAt: createdAt,
		Artifact: &entity.Artifact{
			Columns: []entity.Column{{Name: "text", Type: entity.ColumnTypeString}},
			Rows:    [][]string{{"postgres roundtrip"}},
			Summary: entity.Summary{RecordCount: 1},
		},
	})
	assert.NoError(t, err)

	t.Run("Read back", func(t *testing.T) {
		session, err := repo.Read(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, "postgres roundtrip", session.Artifact.Rows[0][0])
	})

	t.Run("Age from stored created_at", func(t *testing.T) {
		age, err := repo.Age(ctx, id)
		assert.NoError(t, err)
		assert.InDelta(t, 48*time.Hour, age, float64(time.Minute))
	})

	t.Run("Duplicate create", func(t *testing.T) {
		err := repo.Create(ctx, &entity.Session{
			Id:        id,
			CreatedAt: time.Now(),
			Artifact: &entity.Artifact{
				Columns: []entity.Column{{Name: "text", Type: entity.ColumnTypeString}},
				Rows:    [][]string{{"dup"}},
				Summary: entity.Summary{RecordCount: 1},
			},
		})
		assert.ErrorIs(t, err, contract.ErrSessionExists)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		assert.NoError(t, repo.Delete(ctx, id))
		assert.NoError(t, repo.Delete(ctx, id))

		_, err := repo.Read(ctx, id)
		assert.ErrorIs(t, err, contract.ErrSessionNotFound)

		exists, err := repo.Exists(ctx, id)
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}
