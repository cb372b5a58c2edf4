package cart

import (
	"math/rand"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, price int64) Item {
	return Item{ID: id, Name: "item " + id, Price: decimal.NewFromInt(price)}
}

func TestAddItem_CoalescesQuantity(t *testing.T) {
	s := New()

	require.NoError(t, s.AddItem(item("a", 10), 1))
	require.NoError(t, s.AddItem(item("a", 10), 2))

	lines := s.Items()
	require.Len(t, lines, 1)
	require.Equal(t, 3, lines[0].Quantity)
	require.Equal(t, 3, s.Count())
	require.True(t, decimal.NewFromInt(30).Equal(s.Total()), s.Total().String())
}

func TestAddItem_KeepsInsertionOrder(t *testing.T) {
	s := New()
	for _, id := range []string{"c", "a", "b", "a"} {
		require.NoError(t, s.AddItem(item(id, 1), 1))
	}

	var ids []string
	for _, l := range s.Items() {
		ids = append(ids, l.ID)
	}
	require.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestAddItem_QuantityBelowOneAddsOne(t *testing.T) {
	s := New()
	require.NoError(t, s.AddItem(item("a", 5), 0))
	require.NoError(t, s.AddItem(item("a", 5), -3))
	require.Equal(t, 2, s.Count())
}

func TestAddItem_RejectsInvalidItems(t *testing.T) {
	s := New()

	require.ErrorIs(t, s.AddItem(Item{Price: decimal.NewFromInt(1)}, 1), ErrInvalidItem)
	require.ErrorIs(t, s.AddItem(item("a", -1), 1), ErrInvalidItem)
	require.Empty(t, s.Items())
	require.Zero(t, s.Snapshot().Version)
}

func TestRemoveItem(t *testing.T) {
	s := New()
	require.NoError(t, s.AddItem(item("a", 10), 5))
	require.NoError(t, s.AddItem(item("b", 1), 1))

	s.RemoveItem("a")
	require.Len(t, s.Items(), 1)
	require.Equal(t, "b", s.Items()[0].ID)

	v := s.Snapshot().Version
	s.RemoveItem("missing")
	require.Equal(t, v, s.Snapshot().Version, "removing an unknown id changes nothing")
}

func TestRemoveThenAddIsFreshEntry(t *testing.T) {
	s := New()
	require.NoError(t, s.AddItem(item("a", 10), 4))
	s.RemoveItem("a")
	require.NoError(t, s.AddItem(item("a", 10), 2))

	lines := s.Items()
	require.Len(t, lines, 1)
	require.Equal(t, 2, lines[0].Quantity)
	require.True(t, decimal.NewFromInt(20).Equal(s.Total()))
}

func TestClear(t *testing.T) {
	s := New()
	require.NoError(t, s.AddItem(item("a", 10), 1))
	s.Clear()
	require.Empty(t, s.Items())
	require.Zero(t, s.Count())
	require.True(t, s.Total().IsZero())
}

func TestTotal_DecimalPrices(t *testing.T) {
	s := New()
	require.NoError(t, s.AddItem(Item{ID: "a", Price: decimal.RequireFromString("0.10")}, 3))
	require.NoError(t, s.AddItem(Item{ID: "b", Price: decimal.RequireFromString("19.99")}, 1))
	require.Equal(t, "20.29", s.Total().StringFixed(2))
}

// For any sequence of adds and removes, ids stay unique and count and total
// match a model recomputed from scratch.
func TestRandomSequencesMatchModel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		s := New()
		qty := map[string]int{}
		price := map[string]int64{}

		for step := 0; step < 40; step++ {
			id := strconv.Itoa(rng.Intn(6))
			if _, ok := price[id]; !ok {
				price[id] = int64(rng.Intn(100))
			}
			if rng.Intn(4) == 0 {
				s.RemoveItem(id)
				delete(qty, id)
				continue
			}
			n := rng.Intn(3) + 1
			require.NoError(t, s.AddItem(item(id, price[id]), n))
			qty[id] += n
		}

		seen := map[string]bool{}
		for _, l := range s.Items() {
			assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
			seen[l.ID] = true
			assert.Equal(t, qty[l.ID], l.Quantity)
		}
		require.Len(t, seen, len(qty))

		wantCount := 0
		wantTotal := decimal.Zero
		for id, n := range qty {
			wantCount += n
			wantTotal = wantTotal.Add(decimal.NewFromInt(price[id] * int64(n)))
		}
		require.Equal(t, wantCount, s.Count())
		require.True(t, wantTotal.Equal(s.Total()))
	}
}

func TestSubscribe_SeesEveryMutation(t *testing.T) {
	s := New()
	var got []Snapshot
	s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	require.NoError(t, s.AddItem(item("a", 10), 1))
	require.NoError(t, s.AddItem(item("a", 10), 1))
	s.RemoveItem("a")
	s.Clear()

	require.Len(t, got, 3, "clearing an empty cart is not a mutation")
	require.Equal(t, []uint64{1, 2, 3}, []uint64{got[0].Version, got[1].Version, got[2].Version})
	require.Equal(t, 2, got[1].Count())
	require.Empty(t, got[2].Lines)
}

func TestSubscribe_FromCallbackStartsWithNextMutation(t *testing.T) {
	s := New()
	var first, late []uint64
	s.Subscribe(func(snap Snapshot) {
		first = append(first, snap.Version)
		if snap.Version == 1 {
			s.Subscribe(func(snap Snapshot) { late = append(late, snap.Version) })
		}
	})

	require.NoError(t, s.AddItem(item("a", 1), 1))
	require.NoError(t, s.AddItem(item("b", 1), 1))

	assert.Equal(t, []uint64{1, 2}, first)
	assert.Equal(t, []uint64{2}, late)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	require.NoError(t, s.AddItem(item("a", 10), 1))

	lines := s.Items()
	lines[0].Quantity = 99
	require.Equal(t, 1, s.Count())
}

func TestRestore(t *testing.T) {
	s := New()
	s.Restore(Snapshot{Version: 12, Lines: []Line{
		{Item: item("a", 1), Quantity: 2},
		{Item: item("", 1), Quantity: 1},
		{Item: item("a", 1), Quantity: 1},
		{Item: item("b", 2), Quantity: 0},
	}})

	require.Equal(t, uint64(12), s.Snapshot().Version)
	lines := s.Items()
	require.Len(t, lines, 2)
	require.Equal(t, 3, lines[0].Quantity)
	require.Equal(t, 1, lines[1].Quantity)

	require.NoError(t, s.AddItem(item("c", 1), 1))
	require.Equal(t, uint64(13), s.Snapshot().Version)
}

func TestConcurrentAdds(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.AddItem(item(strconv.Itoa(j%5), 1), 1)
			}
		}()
	}
	wg.Wait()

	require.Len(t, s.Items(), 5)
	require.Equal(t, 1000, s.Count())
	require.Equal(t, uint64(1000), s.Snapshot().Version)
}
