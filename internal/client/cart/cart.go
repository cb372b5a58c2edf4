// Package cart is the Cart Store: the ordered line items a visitor intends
// to buy, keyed by item id. It does not depend on the session.
package cart

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
)

var ErrInvalidItem = errors.New("invalid cart item")

// Item is what gets put in the cart.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
}

// Line is an item and how many of it are in the cart. Quantity is at least 1.
type Line struct {
	Item
	Quantity int `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is the cart at one version. Version grows by one on every
// mutation.
type Snapshot struct {
	Version uint64 `json:"version"`
	Lines   []Line `json:"lines"`
}

// Count is the number of units across all lines.
func (s Snapshot) Count() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// Total is the sum of price times quantity.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Store holds the cart. Count and Total are derived on every call.
type Store struct {
	mu      sync.Mutex
	version uint64
	lines   []Line
	subs    []func(Snapshot)
}

func New() *Store {
	return &Store{}
}

// AddItem adds quantity units of item. An id already in the cart has its
// quantity increased; a new id is appended. A quantity below 1 adds one.
func (s *Store) AddItem(item Item, quantity int) error {
	if item.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidItem)
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("%w: negative price for %s", ErrInvalidItem, item.ID)
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	if i := s.indexLocked(item.ID); i >= 0 {
		s.lines[i].Quantity += quantity
	} else {
		s.lines = append(s.lines, Line{Item: item, Quantity: quantity})
	}
	snap, subs := s.commitLocked()
	s.mu.Unlock()

	notify(subs, snap)
	return nil
}

// RemoveItem drops the whole line for id. An unknown id is a no-op.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	snap, subs := s.commitLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return
	}
	s.lines = nil
	snap, subs := s.commitLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// Restore replaces the content with a previously saved snapshot. Lines with
// an invalid item are skipped and duplicate ids are merged. Subscribers are
// not notified.
func (s *Store) Restore(snap Snapshot) {
	var lines []Line
	index := map[string]int{}
	for _, l := range snap.Lines {
		if l.ID == "" || l.Price.IsNegative() {
			continue
		}
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		if i, ok := index[l.ID]; ok {
			lines[i].Quantity += l.Quantity
			continue
		}
		index[l.ID] = len(lines)
		lines = append(lines, l)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = lines
	if snap.Version > s.version {
		s.version = snap.Version
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Items returns the lines in insertion order.
func (s *Store) Items() []Line {
	return s.Snapshot().Lines
}

func (s *Store) Count() int {
	return s.Snapshot().Count()
}

func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total()
}

// Subscribe registers fn to be called with the new snapshot after every
// mutation. fn runs outside the store lock and may be called concurrently
// by concurrent mutations.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) indexLocked(id string) int {
	for i, l := range s.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Version: s.version, Lines: append([]Line(nil), s.lines...)}
}

func (s *Store) commitLocked() (Snapshot, []func(Snapshot)) {
	s.version++
	return s.snapshotLocked(), slices.Clone(s.subs)
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
