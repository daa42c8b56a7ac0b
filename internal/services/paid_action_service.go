package services

import (
	"context"

	"resumeai_backend/internal/dto"
	"resumeai_backend/internal/generation"
	"resumeai_backend/internal/logger"
	"resumeai_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// PaidActionService - authorize -> debit -> generate.
// Кредиты не возвращаются при ошибке генерации.
type PaidActionService interface {
	Run(ctx context.Context, db *gorm.DB, accountID string, req *dto.SpendRequest) (*dto.SpendResponse, error)
}

type paidActionService struct {
	guard     CreditGuard
	ledger    LedgerService
	generator generation.Generator
	now       Clock
}

func NewPaidActionService(guard CreditGuard, ledger LedgerService, generator generation.Generator, now Clock) PaidActionService {
	if now == nil {
		now = systemClock
	}
	return &paidActionService{
		guard:     guard,
		ledger:    ledger,
		generator: generator,
		now:       now,
	}
}

func (s *paidActionService) Run(ctx context.Context, db *gorm.DB, accountID string, req *dto.SpendRequest) (*dto.SpendResponse, error) {
	decision, err := s.guard.Authorize(db, accountID, req.Credits, req.ActionKind)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed() {
		return nil, decision.Err(s.now())
	}

	balance, err := s.ledger.Debit(db, accountID, req.Credits, req.ActionKind, nil)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeInsufficientCredit) {
			logger.CtxInfo(ctx, "debit rejected after authorize", "action_kind", req.ActionKind)
		}
		return nil, err
	}

	output, err := s.generator.Generate(ctx, generation.Request{
		ActionKind: req.ActionKind,
		Input:      req.Input,
	})
	if err != nil {
		logger.CtxWithError(ctx, "generation failed after debit", err,
			"action_kind", req.ActionKind, "credits", req.Credits)
		return nil, apperrors.GenerationFailed(err, req.Credits)
	}

	return &dto.SpendResponse{
		Output:       output,
		CreditsSpent: req.Credits,
		Balance:      balance,
	}, nil
}
