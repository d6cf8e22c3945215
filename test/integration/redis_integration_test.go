package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"archive-session-store/internal/entity"
	"archive-session-store/internal/repository/contract"
	"archive-session-store/internal/repository/implementation"
	"archive-session-store/pkg/token"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisSessionRepository(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		t.Skipf("Skipping integration test: redis not reachable: %v", err)
	}

	repo := implementation.NewRedisSessionRepository(rdb, token.DefaultByteLength)
	ctx := context.Background()

	id, err := token.Generate(token.DefaultByteLength)
	assert.NoError(t, err)
	defer repo.Delete(ctx, id)

	err = repo.Create(ctx, &entity.Session{
		Id:        id,
		CreatedAt: time.Now(),
		Artifact: &entity.Artifact{
			Columns: []entity.Column{{Name: "text", Type: entity.ColumnTypeString}},
			Rows:    [][]string{{"redis roundtrip"}},
			Summary: entity.Summary{RecordCount: 1},
		},
	})
	assert.NoError(t, err)

	t.Run("Read back", func(t *testing.T) {
		session, err := repo.Read(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, "redis roundtrip", session.Artifact.Rows[0][0])
	})

	t.Run("Exists and ListIds", func(t *testing.T) {
		exists, err := repo.Exists(ctx, id)
		assert.NoError(t, err)
		assert.True(t, exists)

		ids, err := repo.ListIds(ctx)
		assert.NoError(t, err)
		assert.Contains(t, ids, id)
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
	})
}
