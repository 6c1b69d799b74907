package stock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
	"maintledger/internal/core/types"
	"maintledger/pkg/logger"
)

// Service records movements and derives the Kardex views from them.
type Service struct {
	repo Repository
}

// NewService creates a new stock journal service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Record validates every movement before appending any of them; the
// journal then takes the whole batch or none of it.
func (s *Service) Record(ctx context.Context, movements ...entity.StockMovement) error {
	for _, m := range movements {
		if err := m.Validate(ctx); err != nil {
			return err
		}
	}
	if err := s.repo.Append(ctx, movements...); err != nil {
		return fmt.Errorf("append movements: %w", err)
	}

	for _, m := range movements {
		logger.Debug(ctx, "recorded stock movement",
			"movement_id", m.ID,
			"kind", m.Kind,
			"material_id", m.MaterialID,
			"quantity", m.Quantity,
		)
	}
	return nil
}

// Load appends movements read back from storage at startup, skipping ones
// already present.
func (s *Service) Load(ctx context.Context, movements []entity.StockMovement) (int, error) {
	loaded := 0
	for _, m := range movements {
		err := s.repo.Append(ctx, m)
		if apperror.HasCode(err, apperror.CodeConflict) {
			continue
		}
		if err != nil {
			return loaded, fmt.Errorf("load movement %s: %w", m.ID, err)
		}
		loaded++
	}
	return loaded, nil
}

// Movements returns the chronological movement list of a material.
func (s *Service) Movements(ctx context.Context, materialID string) ([]entity.StockMovement, error) {
	movements, err := s.repo.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].Timestamp.Before(movements[j].Timestamp)
	})
	return movements, nil
}

// Kardex returns movements with running balances. The balance is always
// computed chronologically; OrderDesc only reverses the output.
func (s *Service) Kardex(ctx context.Context, materialID string, filter MovementFilter) ([]KardexEntry, error) {
	movements, err := s.Movements(ctx, materialID)
	if err != nil {
		return nil, err
	}

	entries := make([]KardexEntry, 0, len(movements))
	var balance types.Quantity
	for _, m := range movements {
		balance += m.SignedQuantity()
		if !inPeriod(m.Timestamp, filter.FromDate, filter.ToDate) {
			continue
		}
		entries = append(entries, KardexEntry{StockMovement: m, Balance: balance})
	}

	if filter.Order == OrderDesc {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

// Recent returns the latest movements first.
func (s *Service) Recent(ctx context.Context, materialID string, limit int) ([]KardexEntry, error) {
	return s.Kardex(ctx, materialID, MovementFilter{Order: OrderDesc, Limit: limit})
}

// Replay rebuilds per-location balances from a zero baseline.
// Locations are returned in order of first appearance.
func (s *Service) Replay(ctx context.Context, materialID string) ([]entity.LocationBalance, int, error) {
	movements, err := s.Movements(ctx, materialID)
	if err != nil {
		return nil, 0, err
	}

	var balances []entity.LocationBalance
	index := make(map[string]int)
	for _, m := range movements {
		for _, d := range m.LocationDeltas() {
			i, ok := index[d.Name]
			if !ok {
				i = len(balances)
				index[d.Name] = i
				balances = append(balances, entity.LocationBalance{Name: d.Name})
			}
			balances[i].Quantity += d.Quantity
		}
	}
	return balances, len(movements), nil
}

// Verify replays the journal and compares it with the material's balances.
func (s *Service) Verify(ctx context.Context, material *entity.Material) (Reconciliation, error) {
	replayed, count, err := s.Replay(ctx, material.ID)
	if err != nil {
		return Reconciliation{}, err
	}

	rec := Reconciliation{
		MaterialID:  material.ID,
		Movements:   count,
		LedgerTotal: material.CurrentStock,
	}

	seen := make(map[string]struct{}, len(replayed))
	for _, r := range replayed {
		seen[r.Name] = struct{}{}
		rec.ReplayedTotal += r.Quantity
		if ledgerQty := material.QuantityAt(r.Name); ledgerQty != r.Quantity {
			rec.Mismatches = append(rec.Mismatches, Mismatch{Location: r.Name, Ledger: ledgerQty, Replayed: r.Quantity})
		}
	}
	for _, l := range material.Locations {
		if _, ok := seen[l.Name]; !ok && !l.Quantity.IsZero() {
			rec.Mismatches = append(rec.Mismatches, Mismatch{Location: l.Name, Ledger: l.Quantity})
		}
	}

	if !rec.OK() {
		logger.Warn(ctx, "kardex replay does not match ledger",
			"material_id", material.ID,
			"ledger_total", rec.LedgerTotal,
			"replayed_total", rec.ReplayedTotal,
			"mismatches", len(rec.Mismatches),
		)
	}
	return rec, nil
}

// Turnover sums receipts and expenses in [from, to].
// Transfers move stock between locations and do not count.
func (s *Service) Turnover(ctx context.Context, materialID string, from, to time.Time) (Turnover, error) {
	if to.Before(from) {
		return Turnover{}, apperror.NewValidation("period end is before start")
	}
	movements, err := s.Movements(ctx, materialID)
	if err != nil {
		return Turnover{}, err
	}

	t := Turnover{MaterialID: materialID, FromDate: from, ToDate: to}
	for _, m := range movements {
		switch {
		case m.Timestamp.Before(from):
			t.OpeningBalance += m.SignedQuantity()
		case m.Timestamp.After(to):
			continue
		case m.Kind == entity.MovementIn || m.Kind == entity.MovementAdd:
			t.Receipt += m.Quantity
		case m.Kind == entity.MovementOut:
			t.Expense += m.Quantity
		}
	}
	t.ClosingBalance = t.OpeningBalance + t.Receipt - t.Expense
	return t, nil
}

func inPeriod(ts time.Time, from, to *time.Time) bool {
	if from != nil && ts.Before(*from) {
		return false
	}
	if to != nil && ts.After(*to) {
		return false
	}
	return true
}
