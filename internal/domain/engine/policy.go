package engine

import (
	"fmt"
	"time"

	"github.com/qrave1/Gamefinity/internal/domain/models"
)

type Mode int

const (
	ModeDeduction Mode = iota
	ModeTrivia
)

// Policy описывает правила одного вида игры
type Policy struct {
	Kind         models.GameKind
	Mode         Mode
	Capacity     int
	MinPlayers   int
	AutoStart    bool
	RequireReady bool
	CodeLength   int

	TurnDuration        time.Duration
	PreparationDuration time.Duration
	VotingDuration      time.Duration
	ResultDuration      time.Duration
	QuestionDuration    time.Duration
	Grace               time.Duration

	QuestionsPerGame int
}

var policies = map[models.GameKind]Policy{
	models.KindBrainMyst: {
		Kind:                models.KindBrainMyst,
		Mode:                ModeDeduction,
		Capacity:            4,
		MinPlayers:          3,
		AutoStart:           true,
		CodeLength:          6,
		TurnDuration:        15 * time.Second,
		PreparationDuration: 5 * time.Second,
		VotingDuration:      30 * time.Second,
		ResultDuration:      10 * time.Second,
		Grace:               3 * time.Second,
	},
	models.KindQuizBlitz: {
		Kind:             models.KindQuizBlitz,
		Mode:             ModeTrivia,
		Capacity:         5,
		MinPlayers:       2,
		CodeLength:       4,
		QuestionDuration: 10 * time.Second,
		Grace:            3 * time.Second,
		QuestionsPerGame: 10,
	},
	models.KindITApp: {
		Kind:             models.KindITApp,
		Mode:             ModeTrivia,
		Capacity:         5,
		MinPlayers:       2,
		RequireReady:     true,
		CodeLength:       6,
		QuestionDuration: 10 * time.Second,
		Grace:            3 * time.Second,
		QuestionsPerGame: 10,
	},
}

func PolicyFor(kind models.GameKind) (Policy, error) {
	p, ok := policies[kind]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return p, nil
}

func Kinds() []models.GameKind {
	return []models.GameKind{models.KindBrainMyst, models.KindQuizBlitz, models.KindITApp}
}

// PhaseDuration возвращает фиксированную длительность фазы
func (p Policy) PhaseDuration(phase models.Phase) time.Duration {
	switch phase {
	case models.PhasePreparation:
		return p.PreparationDuration
	case models.PhaseVoting:
		return p.VotingDuration
	case models.PhaseResult:
		return p.ResultDuration
	case models.PhaseQuestion:
		return p.QuestionDuration
	default:
		return 0
	}
}
