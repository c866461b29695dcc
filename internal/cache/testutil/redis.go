//go:build integration

// Package testutil starts a throwaway Redis container for cache integration
// tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/EvertonDSS/corrida-app11/internal/cache"
	"github.com/EvertonDSS/corrida-app11/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRedis is a Redis server inside a container.
type TestRedis struct {
	Container testcontainers.Container
	Client    *redis.Client
	Addr      string
}

// SetupTestRedis starts Redis, connects a client and registers cleanup on t.
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
			Labels: map[string]string{
				"test":      "corrida-cache",
				"test-name": t.Name(),
			},
		},
		Started: true,
	})
	require.NoError(t, err)

	tr := &TestRedis{Container: container}
	t.Cleanup(func() { tr.cleanup(t) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	tr.Addr = addr

	rdb, err := cache.ConnectRedis(ctx, config.RedisConfig{Enabled: true, Addr: addr})
	require.NoError(t, err)
	tr.Client = rdb
	return tr
}

func (tr *TestRedis) cleanup(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if tr.Client != nil {
		tr.Client.Close()
	}
	if tr.Container != nil {
		if err := tr.Container.Terminate(ctx); err != nil {
			t.Logf("warning: failed to terminate test container: %v", err)
		}
	}
}
