package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdview/internal/domain/models"
	"github.com/mamadbah2/herdview/internal/repository/sqlite"
)

// NoDataMessage explains an empty inventory snapshot.
const NoDataMessage = "No inventory on hand: neither the pooled nor the legacy ledger holds transactions for a storage and feed type."

// Result is the outcome of resolving the inventory snapshot. Exactly one of
// Records (with Strategy) or Diagnostic is set.
type Result struct {
	Strategy   string
	Records    []models.Record
	Diagnostic *models.InventoryDiagnostic
}

// Policy picks the first schema generation that yields an on-hand snapshot.
type Policy struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewPolicy wires the policy over the default generations, newest first.
func NewPolicy(logger *zap.Logger) *Policy {
	return NewPolicyWith(logger, Pooled, Legacy)
}

// NewPolicyWith wires the policy over explicit strategies, tried in order.
func NewPolicyWith(logger *zap.Logger, strategies ...Strategy) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{strategies: strategies, logger: logger}
}

// Resolve computes the on-hand snapshot. A strategy whose tables exist but
// whose aggregation is empty does not stop the search.
func (p *Policy) Resolve(ctx context.Context, q sqlite.Querier) (Result, error) {
	for _, strategy := range p.strategies {
		present, err := q.HasTables(ctx, strategy.Tables()...)
		if err != nil {
			return Result{}, fmt.Errorf("probe %s inventory: %w", strategy.Name, err)
		}
		if !present {
			p.logger.Debug("inventory strategy absent", zap.String("strategy", strategy.Name))
			continue
		}

		records, err := q.Select(ctx, strategy.OnHandQuery())
		if err != nil {
			return Result{}, fmt.Errorf("aggregate %s inventory: %w", strategy.Name, err)
		}
		if len(records) > 0 {
			p.logger.Debug("inventory resolved", zap.String("strategy", strategy.Name), zap.Int("rows", len(records)))
			return Result{Strategy: strategy.Name, Records: records}, nil
		}
		p.logger.Debug("inventory strategy empty", zap.String("strategy", strategy.Name))
	}

	diagnostic, err := p.diagnose(ctx, q)
	if err != nil {
		return Result{}, err
	}
	return Result{Diagnostic: diagnostic}, nil
}

func (p *Policy) diagnose(ctx context.Context, q sqlite.Querier) (*models.InventoryDiagnostic, error) {
	diagnostic := &models.InventoryDiagnostic{Message: NoDataMessage}
	for _, strategy := range p.strategies {
		containers, err := q.CountRows(ctx, strategy.Containers)
		if err != nil {
			return nil, fmt.Errorf("count %s containers: %w", strategy.Name, err)
		}
		transactions, err := q.CountRows(ctx, strategy.Transactions)
		if err != nil {
			return nil, fmt.Errorf("count %s transactions: %w", strategy.Name, err)
		}
		diagnostic.Counts = append(diagnostic.Counts, models.LedgerCount{
			Strategy:     strategy.Name,
			Containers:   containers,
			Transactions: transactions,
		})
	}
	return diagnostic, nil
}
