package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/dokanload/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dokanload/internal/dbx"
	"github.com/dmitrijs2005/dokanload/internal/logging"
)

// Key is the metadata key the cart snapshot is stored under.
const Key = "cart"

// Persister saves and loads cart snapshots.
type Persister interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
}

// SQLitePersister keeps the snapshot as JSON in the metadata table.
type SQLitePersister struct {
	db *sql.DB
}

func NewSQLitePersister(db *sql.DB) *SQLitePersister {
	return &SQLitePersister{db: db}
}

func (p *SQLitePersister) Load(ctx context.Context) (Snapshot, bool, error) {
	return load(ctx, metadata.NewSQLiteRepository(p.db))
}

func load(ctx context.Context, repo metadata.Repository) (Snapshot, bool, error) {
	raw, err := repo.Get(ctx, Key)
	if err != nil {
		return Snapshot{}, false, err
	}
	if raw == nil {
		return Snapshot{}, false, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return snap, true, nil
}

// Save writes snap unless the stored snapshot is already as new. Concurrent
// saves can therefore finish in any order without an older cart winning.
func (p *SQLitePersister) Save(ctx context.Context, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}

	return dbx.WithTx(ctx, p.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		cur, ok, err := load(ctx, repo)
		if err != nil {
			return err
		}
		if ok && cur.Version >= snap.Version {
			return nil
		}
		return repo.Set(ctx, Key, raw)
	})
}

// Attach restores the store from p and then saves every later change.
// Save failures are logged; the in-memory cart stays authoritative.
func Attach(ctx context.Context, s *Store, p Persister, log logging.Logger) error {
	snap, ok, err := p.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	if ok {
		s.Restore(snap)
		log.Debug(ctx, "cart restored", "lines", len(snap.Lines), "version", snap.Version)
	}

	bg := context.WithoutCancel(ctx)
	s.Subscribe(func(snap Snapshot) {
		if err := p.Save(bg, snap); err != nil {
			log.Warn(bg, "failed to save cart", "version", snap.Version, "error", err)
		}
	})
	return nil
}
