package cart

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FoodZone/internal/localstore"
	"FoodZone/internal/menu"
)

func newStorage() localstore.Storage {
	return localstore.NewMemStore().Session("test")
}

func persisted(t *testing.T, st localstore.Storage) map[string]int {
	t.Helper()
	raw, ok, err := st.GetItem(context.Background(), StorageKey)
	require.NoError(t, err)
	if !ok {
		return nil
	}
	var m map[string]int
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestApply(t *testing.T) {
	e := Entries{"A": 2}

	got, ok := Apply(e, "A", -5)
	assert.False(t, ok)
	assert.Equal(t, Entries{"A": 2}, got)

	got, ok = Apply(e, "A", -2)
	assert.True(t, ok)
	assert.Equal(t, Entries{}, got)

	got, ok = Apply(e, "B", 1)
	assert.True(t, ok)
	assert.Equal(t, Entries{"A": 2, "B": 1}, got)

	// input untouched
	assert.Equal(t, Entries{"A": 2}, e)
}

func TestUpdateQuantity_OversizedDecrementRemoves(t *testing.T) {
	ctx := context.Background()
	st := newStorage()
	s := Load(ctx, st, nil)

	_, err := s.SetQuantity(ctx, "A", 2)
	require.NoError(t, err)

	require.NoError(t, s.UpdateQuantity(ctx, "A", -5))
	assert.Equal(t, 0, s.Quantity("A"))
	_, present := s.Entries()["A"]
	assert.False(t, present)
	assert.NotContains(t, persisted(t, st), "A")
}

func TestSetQuantity_GuardIsNoop(t *testing.T) {
	ctx := context.Background()
	st := newStorage()
	s := Load(ctx, st, nil)

	changed, err := s.SetQuantity(ctx, "A", -1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Nil(t, persisted(t, st), "no write for a guarded no-op")

	_, _ = s.SetQuantity(ctx, "A", 2)
	changed, err = s.SetQuantity(ctx, "A", -5)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, s.Quantity("A"))
}

func TestSetQuantity_NeverPersistsNonPositive(t *testing.T) {
	ctx := context.Background()
	st := newStorage()
	s := Load(ctx, st, nil)

	rng := rand.New(rand.NewSource(7))
	ids := []string{"A", "B", "C"}
	for i := 0; i < 500; i++ {
		id := ids[rng.Intn(len(ids))]
		delta := rng.Intn(7) - 3
		if rng.Intn(2) == 0 {
			_, err := s.SetQuantity(ctx, id, delta)
			require.NoError(t, err)
		} else {
			require.NoError(t, s.UpdateQuantity(ctx, id, delta))
		}

		for k, v := range persisted(t, st) {
			require.Greater(t, v, 0, "key %s after step %d", k, i)
		}
	}
}

func TestTotalAndItemCount(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, newStorage(), nil)

	_, _ = s.SetQuantity(ctx, "A", 2)
	_, _ = s.SetQuantity(ctx, "B", 1)

	items := []menu.Item{
		{ID: "A", Price: menu.PriceFromFloat(10)},
		{ID: "B", Price: menu.PriceFromFloat(5)},
	}

	assert.True(t, s.Total(items).Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 3, s.ItemCount())
}

func TestTotal_UnpricedAndMissingContributeZero(t *testing.T) {
	e := Entries{"A": 2, "B": 3, "C": 4}
	items := []menu.Item{
		{ID: "A", Price: menu.PriceFromFloat(1.25)},
		{ID: "B"},
		{ID: "Z", Price: menu.PriceFromFloat(100)},
	}

	assert.Equal(t, "2.5", Total(e, items).String())
	assert.True(t, Total(e, nil).IsZero())
}

func TestClearThenLoadIsEmpty(t *testing.T) {
	ctx := context.Background()
	st := newStorage()
	s := Load(ctx, st, nil)
	_, _ = s.SetQuantity(ctx, "A", 3)

	require.NoError(t, s.Clear(ctx))
	assert.True(t, s.IsEmpty())

	reloaded := Load(ctx, st, nil)
	assert.True(t, reloaded.IsEmpty())
	assert.Equal(t, 0, reloaded.ItemCount())
}

func TestLoad_SurvivesReload(t *testing.T) {
	ctx := context.Background()
	st := newStorage()
	s := Load(ctx, st, nil)
	_, _ = s.SetQuantity(ctx, "A", 3)
	require.NoError(t, s.RemoveItem(ctx, "missing"))

	assert.Equal(t, Entries{"A": 3}, Load(ctx, st, nil).Entries())
}

func TestLoad_CorruptOrInvalidSnapshot(t *testing.T) {
	ctx := context.Background()

	tests := map[string]string{
		"not json":   `{"A": 2`,
		"wrong type": `[1,2,3]`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			st := newStorage()
			require.NoError(t, st.SetItem(ctx, StorageKey, []byte(raw)))
			assert.True(t, Load(ctx, st, nil).IsEmpty())
		})
	}

	st := newStorage()
	require.NoError(t, st.SetItem(ctx, StorageKey, []byte(`{"A":2,"B":0,"C":-4}`)))
	assert.Equal(t, Entries{"A": 2}, Load(ctx, st, nil).Entries())
}

type failingStorage struct{ localstore.Storage }

func (failingStorage) SetItem(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestSetQuantity_PersistFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, failingStorage{newStorage()}, nil)

	changed, err := s.SetQuantity(ctx, "A", 1)
	require.Error(t, err)
	assert.False(t, changed)
	assert.True(t, s.IsEmpty())
}

func TestApply_HugeDeltasStayBounded(t *testing.T) {
	const maxInt = int(^uint(0) >> 1)

	got, ok := Apply(Entries{"A": 1}, "A", maxInt)
	assert.True(t, ok)
	assert.Equal(t, Entries{"A": MaxQuantity}, got)

	got, ok = Apply(Entries{"A": 2}, "A", -maxInt-1)
	assert.False(t, ok)
	assert.Equal(t, Entries{"A": 2}, got)

	assert.Equal(t, Entries{"A": MaxQuantity}, ApplyClamped(Entries{"A": 1}, "A", maxInt))
	assert.Equal(t, Entries{}, ApplyClamped(Entries{"A": 5}, "A", -maxInt-1))

	assert.True(t, ValidDelta(MaxQuantity))
	assert.True(t, ValidDelta(-MaxQuantity))
	assert.False(t, ValidDelta(MaxQuantity+1))
	assert.False(t, ValidDelta(-maxInt-1))
}

func TestUpdateQuantity_HugeIncrementKeepsItem(t *testing.T) {
	const maxInt = int(^uint(0) >> 1)
	ctx := context.Background()
	st := newStorage()
	s := Load(ctx, st, nil)

	_, err := s.SetQuantity(ctx, "A", 1)
	require.NoError(t, err)
	require.NoError(t, s.UpdateQuantity(ctx, "A", maxInt))
	assert.Equal(t, MaxQuantity, s.Quantity("A"))
	assert.Equal(t, map[string]int{"A": MaxQuantity}, persisted(t, st))
}

func TestLoad_OversizedSnapshotIsCapped(t *testing.T) {
	const maxInt = int(^uint(0) >> 1)
	ctx := context.Background()
	st := newStorage()

	raw, err := json.Marshal(map[string]int{"A": maxInt, "B": maxInt, "C": 2})
	require.NoError(t, err)
	require.NoError(t, st.SetItem(ctx, StorageKey, raw))

	s := Load(ctx, st, nil)
	assert.Equal(t, 2*MaxQuantity+2, s.ItemCount())
	assert.False(t, s.IsEmpty())
}

func TestSetQuantity_AtCapIsUnchanged(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, newStorage(), nil)

	changed, err := s.SetQuantity(ctx, "A", MaxQuantity)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.SetQuantity(ctx, "A", 1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, MaxQuantity, s.Quantity("A"))
}
