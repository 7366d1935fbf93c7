package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/qrave1/Gamefinity/internal/domain/models"
)

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	Upsert(ctx context.Context, sub *models.Subscription) error
	UpdateStatus(ctx context.Context, userID string, status models.SubscriptionStatus) error
}

// subscriptionRow - время хранится в unix миллисекундах, одинаково для postgres и sqlite
type subscriptionRow struct {
	UserID    string `db:"user_id"`
	Plan      string `db:"plan"`
	Status    string `db:"status"`
	StartedAt int64  `db:"started_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r subscriptionRow) toModel() *models.Subscription {
	return &models.Subscription{
		UserID:    r.UserID,
		Plan:      models.Plan(r.Plan),
		Status:    models.SubscriptionStatus(r.Status),
		StartedAt: time.UnixMilli(r.StartedAt).UTC(),
		UpdatedAt: time.UnixMilli(r.UpdatedAt).UTC(),
	}
}

type subscriptionRepo struct {
	db *sqlx.DB
}

func NewSubscriptionRepo(db *sqlx.DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) GetByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	var row subscriptionRow

	err := r.db.GetContext(
		ctx,
		&row,
		r.db.Rebind("SELECT user_id, plan, status, started_at, updated_at FROM subscriptions WHERE user_id = ?"),
		userID,
	)
	if err != nil {
		return nil, err
	}

	return row.toModel(), nil
}

func (r *subscriptionRepo) Upsert(ctx context.Context, sub *models.Subscription) error {
	_, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(`INSERT INTO subscriptions (user_id, plan, status, started_at, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET plan = excluded.plan, status = excluded.status,
started_at = excluded.started_at, updated_at = excluded.updated_at`),
		sub.UserID,
		string(sub.Plan),
		string(sub.Status),
		sub.StartedAt.UnixMilli(),
		time.Now().UnixMilli(),
	)

	return err
}

func (r *subscriptionRepo) UpdateStatus(ctx context.Context, userID string, status models.SubscriptionStatus) error {
	_, err := r.db.ExecContext(
		ctx,
		r.db.Rebind("UPDATE subscriptions SET status = ?, updated_at = ? WHERE user_id = ?"),
		string(status),
		time.Now().UnixMilli(),
		userID,
	)

	return err
}
