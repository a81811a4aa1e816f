package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilClientIsAlwaysAMiss(t *testing.T) {
	var c *Client
	ctx := context.Background()

	c.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute)
	var dst map[string]string
	assert.False(t, c.GetJSON(ctx, "k", &dst))
	c.Delete(ctx, "k")
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisIsAMiss(t *testing.T) {
	// Nothing listens on port 1.
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c.SetJSON(ctx, "k", "v", time.Minute)
	var dst string
	assert.False(t, c.GetJSON(ctx, "k", &dst))
	assert.Error(t, c.Ping(ctx))
}
