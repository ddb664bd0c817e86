package inventory

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/mamadbah2/herdview/internal/domain/models"
	"github.com/mamadbah2/herdview/internal/repository/sqlite"
)

// Strategy is one inventory schema generation: a container table (pool or
// lot) grouping a transaction ledger by storage and feed type.
type Strategy struct {
	Name         string
	Containers   string
	Transactions string
	ContainerFK  string
}

var (
	// Pooled is the current ledger model.
	Pooled = Strategy{
		Name:         "pooled",
		Containers:   models.TableInventoryPools,
		Transactions: models.TablePoolTransactions,
		ContainerFK:  "pool_id",
	}
	// Legacy is the lot/batch ledger model pooled replaced.
	Legacy = Strategy{
		Name:         "legacy",
		Containers:   models.TableInventoryLots,
		Transactions: models.TableLotTransactions,
		ContainerFK:  "lot_id",
	}
)

// Tables lists the four tables the strategy needs.
func (s Strategy) Tables() []string {
	return []string{s.Containers, s.Transactions, models.TableStorages, models.TableFeedTypes}
}

// OnHandQuery aggregates the signed ledger per storage, feed type and unit.
func (s Strategy) OnHandQuery() sq.SelectBuilder {
	return sqlite.Builder.
		Select(
			"s.name AS storage",
			"ft.name AS feed_type",
			"ft.unit AS unit",
			fmt.Sprintf("ROUND(SUM(%s), 3) AS on_hand", signedQuantity("t")),
		).
		From(s.Transactions+" t").
		Join(fmt.Sprintf("%s c ON c.id = t.%s", s.Containers, s.ContainerFK)).
		Join(models.TableStorages+" s ON s.id = c.storage_id").
		Join(models.TableFeedTypes+" ft ON ft.id = c.feed_type_id").
		GroupBy("s.name", "ft.name", "ft.unit").
		OrderBy("s.name ASC", "ft.name ASC")
}

func signedQuantity(alias string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CASE UPPER(TRIM(%s.kind))", alias)
	for _, kind := range models.LedgerKinds {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d * %s.quantity", kind, kind.Sign(), alias)
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}
