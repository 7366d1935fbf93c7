package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionApproved SubscriptionStatus = "approved"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

// Period возвращает длительность тарифа
func (p Plan) Period() time.Duration {
	switch p {
	case PlanYearly:
		return 365 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

type Subscription struct {
	UserID    string             `json:"userId"`
	Plan      Plan               `json:"plan"`
	Status    SubscriptionStatus `json:"status"`
	StartedAt time.Time          `json:"startedAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func (s *Subscription) ExpiresAt() time.Time {
	return s.StartedAt.Add(s.Plan.Period())
}

// Active - подписка одобрена и еще не истекла
func (s *Subscription) Active(now time.Time) bool {
	return s.Status == SubscriptionApproved && now.Before(s.ExpiresAt())
}
