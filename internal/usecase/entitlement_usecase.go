package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qrave1/Gamefinity/internal/application/config"
	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/domain/engine"
	"github.com/qrave1/Gamefinity/internal/domain/models"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/database/repository"
)

type EntitlementUsecase interface {
	CanPlay(ctx context.Context, userID string) (bool, error)
	// Subscription возвращает подписку пользователя или nil
	Subscription(ctx context.Context, userID string) (*models.Subscription, error)
}

type entitlementUsecase struct {
	cfg   *config.Config
	repo  repository.SubscriptionRepository
	clock engine.Clock
}

func NewEntitlementUsecase(cfg *config.Config, repo repository.SubscriptionRepository, clock engine.Clock) EntitlementUsecase {
	return &entitlementUsecase{cfg: cfg, repo: repo, clock: clock}
}

func (uc *entitlementUsecase) CanPlay(ctx context.Context, userID string) (bool, error) {
	if uc.cfg.IsAdmin(userID) || uc.cfg.FreePlay {
		return true, nil
	}

	sub, err := uc.Subscription(ctx, userID)
	if err != nil {
		return false, err
	}

	if sub == nil {
		return false, nil
	}

	now := uc.clock.Now()
	if sub.Active(now) {
		return true, nil
	}

	if sub.Status == models.SubscriptionApproved {
		// срок тарифа вышел
		if err := uc.repo.UpdateStatus(ctx, userID, models.SubscriptionExpired); err != nil {
			slog.Error(
				"mark subscription expired",
				slog.Any(constant.Error, err),
				slog.String(constant.UserID, userID),
			)
		}
	}

	return false, nil
}

func (uc *entitlementUsecase) Subscription(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := uc.repo.GetByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	return sub, nil
}
