package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	a := s.Session("a")
	b := s.Session("b")

	require.NoError(t, a.SetItem(ctx, "k", []byte("1")))

	v, ok, err := a.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", string(v))

	_, ok, err = b.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemStore_RemoveItem(t *testing.T) {
	ctx := context.Background()
	st := NewMemStore().Session("a")

	require.NoError(t, st.SetItem(ctx, "k", []byte("v")))
	require.NoError(t, st.RemoveItem(ctx, "k"))
	require.NoError(t, st.RemoveItem(ctx, "missing"))

	_, ok, err := st.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	st := NewMemStore().Session("a")
	require.NoError(t, st.SetItem(ctx, "k", []byte("abc")))

	v, _, _ := st.GetItem(ctx, "k")
	v[0] = 'x'

	again, _, _ := st.GetItem(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemStore_Expire(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.Session("old").SetItem(ctx, "k", []byte("v")))

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	require.NoError(t, s.Session("fresh").SetItem(ctx, "k", []byte("v")))

	n, err := s.Expire(ctx, base.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok, _ := s.Session("old").GetItem(ctx, "k")
	assert.False(t, ok)
	_, ok, _ = s.Session("fresh").GetItem(ctx, "k")
	assert.True(t, ok)
}

func TestMemStore_ExpireKeepsLiveSessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.Session("reader").SetItem(ctx, "k", []byte("v")))
	require.NoError(t, s.Session("gone").SetItem(ctx, "k", []byte("v")))

	n, err := s.Expire(ctx, base.Add(time.Hour), []string{"reader"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok, _ := s.Session("reader").GetItem(ctx, "k")
	assert.True(t, ok)
	_, ok, _ = s.Session("gone").GetItem(ctx, "k")
	assert.False(t, ok)
}
