package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerunLimiterSpacesReruns(t *testing.T) {
	l := NewRerunLimiter(time.Hour)
	assert.True(t, l.Ready())
	require.NoError(t, l.Wait(context.Background()))
	assert.False(t, l.Ready())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx), "the next rerun is an hour away")
}

func TestRerunLimiterWithoutInterval(t *testing.T) {
	l := NewRerunLimiter(0)
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Wait(context.Background()))
		assert.True(t, l.Ready())
	}
}

func TestRerunLimiterWaitsOutShortInterval(t *testing.T) {
	l := NewRerunLimiter(30 * time.Millisecond)
	require.NoError(t, l.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
