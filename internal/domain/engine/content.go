package engine

import "github.com/qrave1/Gamefinity/internal/domain/models"

// Randomizer совместим с *rand.Rand из math/rand/v2
type Randomizer interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Content - статический контент игр: темы для BrainMyst и вопросы для тривии
type Content interface {
	Subjects() []string
	Categories() []string
	Topic(subject string, rnd Randomizer) (string, error)
	Questions(category string, n int, rnd Randomizer) ([]models.Question, error)
}

// ValidCriteria проверяет, что предмет/категория существует для режима
func ValidCriteria(content Content, mode Mode, criteria string) bool {
	list := content.Categories()
	if mode == ModeDeduction {
		list = content.Subjects()
	}

	for _, c := range list {
		if c == criteria {
			return true
		}
	}

	return false
}
