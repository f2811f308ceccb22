package e2e

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/bakry/voice-comments/internal/datalayer"
)

var (
	postgresOnce      sync.Once
	postgresContainer *postgres.PostgresContainer
	connStr           string
	postgresStartErr  error
	postgresWG        sync.WaitGroup
)

// UsePostgres signals that the test is using Postgres as its database.
// This will either provision or reuse a Postgres container for the test.
// Do not expect a clean state in the database; it is shared across tests
// to simulate real-world usage.
func UsePostgres(t *testing.T) string {
	t.Helper()

	postgresOnce.Do(func() {
		ctx := context.Background()
		postgresContainer, postgresStartErr = postgres.Run(
			ctx,
			"postgres",
			postgres.WithDatabase("voicecomments"),
			postgres.WithUsername("user"),
			postgres.WithPassword("password"),
			postgres.BasicWaitStrategies(),
		)
		if postgresStartErr != nil {
			return
		}
		connStr, postgresStartErr = postgresContainer.ConnectionString(ctx)
		if postgresStartErr != nil {
			return
		}

		pool, err := pgxpool.New(ctx, connStr)
		if err != nil {
			postgresStartErr = err
			return
		}
		defer pool.Close()

		postgresStartErr = datalayer.MigratePostgres(pool)
	})

	if postgresStartErr != nil {
		t.Fatalf("failed to start postgres container: %v", postgresStartErr)
	}
	postgresWG.Add(1)
	t.Cleanup(postgresWG.Done)

	return connStr
}

// GetPool creates a pgx pool for the test. It performs no migrations;
// UsePostgres already brought the schema up.
func GetPool(t *testing.T, connStr string) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(t.Context(), connStr)
	if err != nil {
		t.Fatalf("failed to create postgres pool: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

func TerminatePostgresForE2E() {
	postgresWG.Wait()
	if postgresContainer != nil {
		err := postgresContainer.Terminate(context.Background())
		if err != nil {
			fmt.Printf("failed to terminate postgres container: %v", err)
		}
	}
}

var (
	redisOnce      sync.Once
	redisContainer *tcredis.RedisContainer
	redisURL       string
	redisStartErr  error
	redisWG        sync.WaitGroup
)

// UseRedis provisions or reuses the shared Redis container and returns
// its connection URL. Like Postgres, the instance is shared across
// tests; counters accumulate.
func UseRedis(t *testing.T) string {
	t.Helper()

	redisOnce.Do(func() {
		ctx := context.Background()
		redisContainer, redisStartErr = tcredis.Run(ctx, "redis:7")
		if redisStartErr != nil {
			return
		}
		redisURL, redisStartErr = redisContainer.ConnectionString(ctx)
	})

	if redisStartErr != nil {
		t.Fatalf("failed to start redis container: %v", redisStartErr)
	}
	redisWG.Add(1)
	t.Cleanup(redisWG.Done)

	return redisURL
}

// GetRedisClient creates a client for the shared Redis container.
func GetRedisClient(t *testing.T, url string) *redis.Client {
	t.Helper()
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}

	client := redis.NewClient(opts)
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close redis client: %v", err)
		}
	})
	return client
}

func TerminateRedisForE2E() {
	redisWG.Wait()
	if redisContainer != nil {
		err := redisContainer.Terminate(context.Background())
		if err != nil {
			fmt.Printf("failed to terminate redis container: %v", err)
		}
	}
}
