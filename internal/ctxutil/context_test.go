package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.EqualValues(t, 0, GetChatID(ctx))

	ctx = WithChatID(ctx, 42)
	assert.EqualValues(t, 42, GetChatID(ctx))
}

func TestRequestIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
}
