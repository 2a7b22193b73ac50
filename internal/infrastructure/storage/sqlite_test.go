package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleProjection() domain.Projection {
	return domain.Projection{
		Groups: []domain.GroupRow{
			{GroupKey: "aulaf75", BaseName: "Aula F75", Price: "4,999", Stock: domain.InStock, Category: "keyboard"},
			{GroupKey: "gmmkpro", BaseName: "Gmmk Pro", Price: "", Stock: domain.OutOfStock, Category: "keyboard"},
		},
		Listings: []domain.ListingRow{
			{GroupKey: "aulaf75", Position: 0, Name: "Aula F75", Link: "https://meckeys.com/a", Price: "4,999", Stock: "In Stock", Category: "keyboard", Vendor: "MecKeys"},
			{GroupKey: "aulaf75", Position: 1, Name: "AULA F75 Wireless", Link: "https://neomacro.in/b", Price: "5,499", Stock: "In Stock", Category: "keyboard", Vendor: "NeoMacro"},
			{GroupKey: "gmmkpro", Position: 0, Name: "GMMK Pro", Link: "https://stackskb.com/c", Price: "TBD", Stock: "Sold Out", Category: "keyboard", Vendor: "StacksKB"},
		},
	}
}

func TestSQLiteStore_EmptyCatalog(t *testing.T) {
	store := openTestStore(t)

	groups, listings, err := store.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Empty(t, listings)

	runID, _, err := store.CurrentRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", runID)
}

func TestSQLiteStore_ReplaceAndLoad(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	projection := sampleProjection()

	require.NoError(t, store.ReplaceCatalog(ctx, "run-1", projection))

	groups, listings, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, projection.Groups, groups)
	assert.Equal(t, projection.Listings, listings)

	runID, updatedAt, err := store.CurrentRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)
	assert.False(t, updatedAt.IsZero())
}

func TestSQLiteStore_ReplaceSwapsRuns(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.ReplaceCatalog(ctx, "run-1", sampleProjection()))

	next := domain.Projection{
		Groups: []domain.GroupRow{
			{GroupKey: "q1pro", BaseName: "Q1 Pro", Price: "17,999", Stock: domain.InStock, Category: "keyboard"},
		},
		Listings: []domain.ListingRow{
			{GroupKey: "q1pro", Position: 0, Name: "Keychron Q1 Pro", Link: "https://meckeys.com/q1", Price: "17,999", Stock: "In Stock", Category: "keyboard", Vendor: "MecKeys"},
		},
	}
	require.NoError(t, store.ReplaceCatalog(ctx, "run-2", next))

	groups, listings, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, next.Groups, groups)
	assert.Equal(t, next.Listings, listings)

	var stale int
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE run_id = 'run-1'`).Scan(&stale))
	assert.Zero(t, stale)
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM product_groups WHERE run_id = 'run-1'`).Scan(&stale))
	assert.Zero(t, stale)
}

func TestSQLiteStore_ReplaceUpsertsWithinRun(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	projection := domain.Projection{
		Groups: []domain.GroupRow{
			{GroupKey: "k", BaseName: "K", Price: "10", Stock: domain.InStock},
			{GroupKey: "k", BaseName: "K", Price: "9", Stock: domain.InStock},
		},
		Listings: []domain.ListingRow{
			{GroupKey: "k", Position: 0, Name: "K", Link: "https://x.com/k", Price: "10"},
			{GroupKey: "k", Position: 1, Name: "K v2", Link: "https://x.com/k", Price: "9"},
		},
	}
	require.NoError(t, store.ReplaceCatalog(ctx, "run-1", projection))

	groups, listings, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "9", groups[0].Price)
	require.Len(t, listings, 1)
	assert.Equal(t, "K v2", listings[0].Name)
}

func TestSQLiteStore_FailuresKeepPreviousCatalog(t *testing.T) {
	tests := []struct {
		name       string
		projection domain.Projection
		wantErr    error
	}{
		{
			name: "group table rejects bad stock",
			projection: domain.Projection{
				Groups: []domain.GroupRow{{GroupKey: "bad", BaseName: "Bad", Stock: domain.StockStatus("maybe")}},
			},
			wantErr: domain.ErrGroupTableWrite,
		},
		{
			name: "listing table rejects orphan rows",
			projection: domain.Projection{
				Groups:   []domain.GroupRow{{GroupKey: "ok", BaseName: "Ok", Stock: domain.InStock}},
				Listings: []domain.ListingRow{{GroupKey: "missing", Name: "Orphan", Link: "https://x.com/orphan"}},
			},
			wantErr: domain.ErrListingTableWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := openTestStore(t)
			previous := sampleProjection()
			require.NoError(t, store.ReplaceCatalog(ctx, "run-1", previous))

			err := store.ReplaceCatalog(ctx, "run-2", tt.projection)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			groups, listings, err := store.LoadCatalog(ctx)
			require.NoError(t, err)
			assert.Equal(t, previous.Groups, groups)
			assert.Equal(t, previous.Listings, listings)

			runID, _, err := store.CurrentRun(ctx)
			require.NoError(t, err)
			assert.Equal(t, "run-1", runID)
		})
	}
}

func TestOpen_InMemory(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.ReplaceCatalog(context.Background(), "run-1", sampleProjection()))
	groups, _, err := store.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}
