package inventory

import (
	"context"
	"errors"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdview/internal/domain/models"
	"github.com/mamadbah2/herdview/internal/repository/sqlite"
	"github.com/mamadbah2/herdview/internal/testhelper"
)

const seedHay = `INSERT INTO storages VALUES (1, 'Barn A');
	INSERT INTO feed_types VALUES (1, 'Hay', 'bales')`

func openDB(t *testing.T, statements ...string) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), testhelper.NewDatabase(t, statements...), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func row(t *testing.T, rec models.Record) (string, string, string, float64) {
	t.Helper()
	require.Equal(t, []string{"storage", "feed_type", "unit", "on_hand"}, rec.Names())
	onHand, ok := rec[3].Value.(float64)
	require.True(t, ok, "on_hand should be numeric, got %T", rec[3].Value)
	return rec[0].Value.(string), rec[1].Value.(string), rec[2].Value.(string), onHand
}

func TestResolve_PooledScenario(t *testing.T) {
	db := openDB(t, testhelper.FeedDDL, testhelper.StoragesDDL, testhelper.PooledDDL, seedHay,
		`INSERT INTO inventory_pools VALUES (1, 1, 1)`,
		`INSERT INTO inventory_pool_transactions VALUES (1, 1, 'ADD', 100), (2, 1, 'REMOVE', 30), (3, 1, 'ADJUST', -5)`)

	res, err := NewPolicy(nil).Resolve(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, Pooled.Name, res.Strategy)
	assert.Nil(t, res.Diagnostic)
	require.Len(t, res.Records, 1)

	storage, feed, unit, onHand := row(t, res.Records[0])
	assert.Equal(t, "Barn A", storage)
	assert.Equal(t, "Hay", feed)
	assert.Equal(t, "bales", unit)
	assert.Equal(t, 65.0, onHand)
}

func TestResolve_KindsAreCaseInsensitiveAndUnknownIsZero(t *testing.T) {
	db := openDB(t, testhelper.FeedDDL, testhelper.StoragesDDL, testhelper.PooledDDL, seedHay,
		`INSERT INTO inventory_pools VALUES (1, 1, 1)`,
		`INSERT INTO inventory_pool_transactions VALUES
			(1, 1, 'add', 10.1234), (2, 1, 'Remove', 2), (3, 1, 'adjust', 0.5), (4, 1, 'TRANSFER', 999)`)

	res, err := NewPolicy(nil).Resolve(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	_, _, _, onHand := row(t, res.Records[0])
	assert.Equal(t, 8.623, onHand)
}

func TestResolve_GroupsAndOrders(t *testing.T) {
	db := openDB(t, testhelper.FeedDDL, testhelper.StoragesDDL, testhelper.PooledDDL,
		`INSERT INTO storages VALUES (1, 'Silo'), (2, 'Barn A')`,
		`INSERT INTO feed_types VALUES (1, 'Oats', 'kg'), (2, 'Hay', 'bales')`,
		`INSERT INTO inventory_pools VALUES (1, 1, 1), (2, 2, 1), (3, 2, 2), (4, 2, 2)`,
		`INSERT INTO inventory_pool_transactions VALUES
			(1, 1, 'ADD', 5), (2, 2, 'ADD', 7), (3, 3, 'ADD', 1), (4, 4, 'ADD', 2)`)

	res, err := NewPolicy(nil).Resolve(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	var got [][2]string
	for _, rec := range res.Records {
		storage, feed, _, _ := row(t, rec)
		got = append(got, [2]string{storage, feed})
	}
	assert.Equal(t, [][2]string{{"Barn A", "Hay"}, {"Barn A", "Oats"}, {"Silo", "Oats"}}, got)

	_, _, _, hay := row(t, res.Records[0])
	assert.Equal(t, 3.0, hay, "two pools for the same storage and feed type merge")
}

func TestResolve_FallsBackToLegacyWhenPooledEmpty(t *testing.T) {
	db := openDB(t, testhelper.FeedDDL, testhelper.StoragesDDL, testhelper.PooledDDL, testhelper.LegacyDDL, seedHay,
		`INSERT INTO inventory_pools VALUES (1, 1, 1)`,
		`INSERT INTO inventory_lots VALUES (1, 1, 1)`,
		`INSERT INTO inventory_lot_transactions VALUES (1, 1, 'ADD', 40), (2, 1, 'REMOVE', 15)`)

	res, err := NewPolicy(nil).Resolve(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, Legacy.Name, res.Strategy)
	require.Len(t, res.Records, 1)
	_, _, _, onHand := row(t, res.Records[0])
	assert.Equal(t, 25.0, onHand)
}

func TestResolve_FallsBackToLegacyWhenPooledAbsent(t *testing.T) {
	db := openDB(t, testhelper.FeedDDL, testhelper.StoragesDDL, testhelper.LegacyDDL, seedHay,
		`INSERT INTO inventory_lots VALUES (1, 1, 1)`,
		`INSERT INTO inventory_lot_transactions VALUES (1, 1, 'ADD', 3)`)

	res, err := NewPolicy(nil).Resolve(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, Legacy.Name, res.Strategy)
}

func TestResolve_PrefersPooledOverLegacy(t *testing.T) {
	db := openDB(t, testhelper.FeedDDL, testhelper.StoragesDDL, testhelper.PooledDDL, testhelper.LegacyDDL, seedHay,
		`INSERT INTO inventory_pools VALUES (1, 1, 1)`,
		`INSERT INTO inventory_pool_transactions VALUES (1, 1, 'ADD', 1)`,
		`INSERT INTO inventory_lots VALUES (1, 1, 1)`,
		`INSERT INTO inventory_lot_transactions VALUES (1, 1, 'ADD', 99)`)

	res, err := NewPolicy(nil).Resolve(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, Pooled.Name, res.Strategy)
	_, _, _, onHand := row(t, res.Records[0])
	assert.Equal(t, 1.0, onHand)
}

func TestResolve_DiagnosticWhenNothingAvailable(t *testing.T) {
	db := openDB(t, testhelper.AnimalsDDL)

	res, err := NewPolicy(nil).Resolve(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Strategy)
	require.NotNil(t, res.Diagnostic)
	assert.Equal(t, NoDataMessage, res.Diagnostic.Message)
	assert.Equal(t, []models.LedgerCount{
		{Strategy: "pooled"},
		{Strategy: "legacy"},
	}, res.Diagnostic.Counts)
}

func TestResolve_DiagnosticWhenBothEmpty(t *testing.T) {
	db := openDB(t, testhelper.FeedDDL, testhelper.StoragesDDL, testhelper.PooledDDL, testhelper.LegacyDDL, seedHay,
		`INSERT INTO inventory_pools VALUES (1, 1, 1), (2, 1, 1)`,
		`INSERT INTO inventory_lots VALUES (1, 1, 1)`)

	res, err := NewPolicy(nil).Resolve(context.Background(), db)
	require.NoError(t, err)
	require.NotNil(t, res.Diagnostic)
	assert.Equal(t, []models.LedgerCount{
		{Strategy: "pooled", Containers: 2},
		{Strategy: "legacy", Containers: 1},
	}, res.Diagnostic.Counts)
}

type failingQuerier struct {
	sqlite.Querier
}

func (failingQuerier) HasTables(context.Context, ...string) (bool, error) {
	return false, errors.New("disk I/O error")
}

func TestResolve_PropagatesErrors(t *testing.T) {
	_, err := NewPolicy(nil).Resolve(context.Background(), failingQuerier{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probe pooled inventory")
}

func TestOnHandQuery_UsesStrategyTables(t *testing.T) {
	query, args, err := Legacy.OnHandQuery().ToSql()
	require.NoError(t, err)
	assert.Empty(t, args)
	assert.Contains(t, query, "FROM inventory_lot_transactions t")
	assert.Contains(t, query, "JOIN inventory_lots c ON c.id = t.lot_id")
	assert.Contains(t, query, "WHEN 'REMOVE' THEN -1 * t.quantity")
	assert.Contains(t, query, "ORDER BY s.name ASC, ft.name ASC")

	var _ sq.Sqlizer = Pooled.OnHandQuery()
}

func TestResolve_KindsIgnoreSurroundingWhitespace(t *testing.T) {
	db := openDB(t, testhelper.FeedDDL, testhelper.StoragesDDL, testhelper.PooledDDL, seedHay,
		`INSERT INTO inventory_pools VALUES (1, 1, 1)`,
		`INSERT INTO inventory_pool_transactions VALUES (1, 1, ' add ', 10), (2, 1, 'REMOVE  ', 4)`)

	res, err := NewPolicy(nil).Resolve(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	_, _, _, onHand := row(t, res.Records[0])
	assert.Equal(t, 6.0, onHand)
	assert.Equal(t, models.ParseLedgerKind(" add ").Sign()*10+models.ParseLedgerKind("REMOVE  ").Sign()*4, int(onHand))
}

func TestLedgerKindSign(t *testing.T) {
	assert.Equal(t, 1, models.ParseLedgerKind(" add ").Sign())
	assert.Equal(t, 1, models.ParseLedgerKind("Adjust").Sign())
	assert.Equal(t, -1, models.ParseLedgerKind("remove").Sign())
	assert.Equal(t, 0, models.ParseLedgerKind("transfer").Sign())
}
