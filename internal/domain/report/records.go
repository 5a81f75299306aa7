package report

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pinshop/backend/internal/domain/finance"
	"github.com/pinshop/backend/internal/domain/production"
	"github.com/pinshop/backend/internal/domain/repair"
	"github.com/pinshop/backend/internal/domain/trade"
)

// Records bundles the four collections the report reads
type Records struct {
	Sales            []trade.Sale                 `json:"sales"`
	Repairs          []repair.RepairOrder         `json:"repairs"`
	Transactions     []finance.CashTransaction    `json:"transactions"`
	ProductionOrders []production.ProductionOrder `json:"production_orders"`
}

// Len returns the total number of records
func (r Records) Len() int {
	return len(r.Sales) + len(r.Repairs) + len(r.Transactions) + len(r.ProductionOrders)
}

// FilterRecords keeps the records dated within rng. Cancelled production
// orders are dropped. A record without a usable date is skipped and logged;
// one bad record never fails the whole report. Inputs are not modified.
func FilterRecords(records Records, rng DateRange, logger *zap.Logger) Records {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Records{
		Sales: filterDated(records.Sales, rng, logger, "sale",
			func(s *trade.Sale) (uuid.UUID, time.Time) { return s.ID, s.Date }, nil),
		Repairs: filterDated(records.Repairs, rng, logger, "repair_order",
			func(r *repair.RepairOrder) (uuid.UUID, time.Time) { return r.ID, r.CreationDate }, nil),
		Transactions: filterDated(records.Transactions, rng, logger, "cash_transaction",
			func(t *finance.CashTransaction) (uuid.UUID, time.Time) { return t.ID, t.Date }, nil),
		ProductionOrders: filterDated(records.ProductionOrders, rng, logger, "production_order",
			func(o *production.ProductionOrder) (uuid.UUID, time.Time) { return o.ID, o.CreationDate },
			func(o *production.ProductionOrder) bool { return !o.Status.IsCancelled() }),
	}
}

func filterDated[T any](items []T, rng DateRange, logger *zap.Logger, kind string,
	dated func(*T) (uuid.UUID, time.Time), keep func(*T) bool) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		item := &items[i]
		id, at := dated(item)
		if at.IsZero() {
			logger.Warn("Skipping record without a valid date",
				zap.String("kind", kind),
				zap.String("id", id.String()))
			continue
		}
		if !rng.Contains(at) {
			continue
		}
		if keep != nil && !keep(item) {
			continue
		}
		out = append(out, *item)
	}
	return out
}
