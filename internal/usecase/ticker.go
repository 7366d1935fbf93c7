package usecase

import "time"

// TickerCreator создает тикер актора комнаты. В тестах подменяется каналом, которым управляет тест.
type TickerCreator interface {
	Create(d time.Duration) (ticks <-chan time.Time, stop func())
}

type systemTickerCreator struct{}

func NewTickerCreator() TickerCreator {
	return systemTickerCreator{}
}

func (systemTickerCreator) Create(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)

	return t.C, t.Stop
}
