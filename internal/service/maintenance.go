package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Maintenance runs the periodic housekeeping of the store.
type Maintenance struct {
	deps Deps
}

func NewMaintenance(deps Deps) *Maintenance {
	return &Maintenance{deps: deps.withDefaults()}
}

type MaintenanceReport struct {
	TokensDeleted   int64 `json:"tokensDeleted"`
	InvoicesOverdue int64 `json:"invoicesOverdue"`
}

// Run deletes expired confirmation tokens and flags open invoices past
// their due date.
func (m *Maintenance) Run(ctx context.Context) (MaintenanceReport, error) {
	now := m.deps.now()
	var rep MaintenanceReport
	var err error
	if rep.TokensDeleted, err = m.deps.Store.Tokens.DeleteExpired(ctx, now); err != nil {
		return rep, fmt.Errorf("deleting expired tokens: %w", err)
	}
	if rep.InvoicesOverdue, err = m.deps.Store.Invoices.MarkOverdue(ctx, now); err != nil {
		return rep, fmt.Errorf("marking overdue invoices: %w", err)
	}
	m.deps.Logger.Info("maintenance finished",
		zap.Int64("tokensDeleted", rep.TokensDeleted),
		zap.Int64("invoicesOverdue", rep.InvoicesOverdue),
	)
	return rep, nil
}
