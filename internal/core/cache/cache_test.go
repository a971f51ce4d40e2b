package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNewWithoutAddrIsNil(t *testing.T) {
	assert.Nil(t, New("", "", 0, time.Minute))
}

func TestGetOrLoadJSON(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (*item, error) {
		calls++
		return &item{Name: "lamp"}, nil
	}

	got, err := GetOrLoadJSON(c, ctx, "product:1", 0, load)
	require.NoError(t, err)
	assert.Equal(t, "lamp", got.Name)

	got, err = GetOrLoadJSON(c, ctx, "product:1", 0, load)
	require.NoError(t, err)
	assert.Equal(t, "lamp", got.Name)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("product:1"))
	assert.Equal(t, time.Minute, mr.TTL("product:1"))
}

func TestLoadErrorIsNotCached(t *testing.T) {
	c, mr := newCache(t)
	boom := errors.New("boom")

	_, err := GetOrLoadJSON(c, context.Background(), "product:2", 0, func(context.Context) (*item, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("product:2"))
}

func TestInvalidatePrefix(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("products:featured:3", "[]"))
	require.NoError(t, mr.Set("products:featured:0", "[]"))
	require.NoError(t, mr.Set("product:1", "{}"))

	require.NoError(t, c.InvalidatePrefix(ctx, "products:featured:"))
	assert.False(t, mr.Exists("products:featured:3"))
	assert.False(t, mr.Exists("products:featured:0"))
	assert.True(t, mr.Exists("product:1"))

	require.NoError(t, c.Invalidate(ctx, "product:1"))
	assert.False(t, mr.Exists("product:1"))
}

func TestNilCacheLoadsDirectly(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	got, err := GetOrLoadJSON(c, ctx, "k", 0, func(context.Context) (*item, error) {
		return &item{Name: "direct"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", got.Name)
	assert.NoError(t, c.Invalidate(ctx, "k"))
	assert.NoError(t, c.InvalidatePrefix(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestNilResultIsNotCached(t *testing.T) {
	c, mr := newCache(t)
	got, err := GetOrLoadJSON(c, context.Background(), "product:missing", 0, func(context.Context) (*item, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("product:missing"))
}

func TestCorruptEntryIsReloaded(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("product:3", "{not json"))

	got, err := GetOrLoadJSON(c, context.Background(), "product:3", 0, func(context.Context) (*item, error) {
		return &item{Name: "fresh"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Name)
	assert.False(t, mr.Exists("product:3"))
}
