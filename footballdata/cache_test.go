package footballdata

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
			Labels:       map[string]string{"test": "betting-footballdata", "cleanup": "auto"},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewRedisCache(client)

	_, ok, err := cache.Get(ctx, "footballdata:teams/66")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "footballdata:teams/66", []byte(`{"id":66}`), time.Minute))

	raw, ok, err := cache.Get(ctx, "footballdata:teams/66")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":66}`, string(raw))

	ttl, err := client.TTL(ctx, "footballdata:teams/66").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
