package bankaccounts

import (
	"context"

	"github.com/lotpilot/lotpilot/internal/lifecycle"
)

// Service exposes active accounts both as the raw masterdata rows and as
// the view the lifecycle engine consumes for payment previews.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListActive(ctx context.Context) ([]BankAccount, error) {
	return s.repo.ListActive(ctx)
}

// Views adapts Service to lifecycle.BankAccountPort.
type Views struct {
	svc *Service
}

func NewViews(svc *Service) *Views {
	return &Views{svc: svc}
}

func (v *Views) ListActive(ctx context.Context) ([]lifecycle.BankAccountView, error) {
	accounts, err := v.svc.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]lifecycle.BankAccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, lifecycle.BankAccountView{
			ID:             a.ID,
			Name:           a.Name,
			AccountNumber:  a.AccountNumber,
			CurrentBalance: a.CurrentBalance,
		})
	}
	return views, nil
}
