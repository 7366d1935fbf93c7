package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/qrave1/Gamefinity/internal/domain/engine"
	"github.com/qrave1/Gamefinity/internal/domain/models"
)

//go:embed bank.json
var bankJSON []byte

type bankQuestion struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"`
}

type bank struct {
	Subjects   map[string][]string       `json:"subjects"`
	Categories map[string][]bankQuestion `json:"categories"`
}

// Bank - встроенный банк тем и вопросов
type Bank struct {
	data bank

	subjects   []string
	categories []string
}

func New() (*Bank, error) {
	return Parse(bankJSON)
}

func Parse(raw []byte) (*Bank, error) {
	var b bank
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("unmarshal content bank: %w", err)
	}

	for category, questions := range b.Categories {
		for i, q := range questions {
			if q.Answer < 0 || q.Answer >= len(q.Choices) {
				return nil, fmt.Errorf("category %q question %d: answer out of range", category, i)
			}
		}
	}

	return &Bank{
		data:       b,
		subjects:   sortedKeys(b.Subjects),
		categories: sortedKeys(b.Categories),
	}, nil
}

func (b *Bank) Subjects() []string {
	return append([]string(nil), b.subjects...)
}

func (b *Bank) Categories() []string {
	return append([]string(nil), b.categories...)
}

func (b *Bank) Topic(subject string, rnd engine.Randomizer) (string, error) {
	topics := b.data.Subjects[subject]
	if len(topics) == 0 {
		return "", fmt.Errorf("%w: %q", engine.ErrUnknownCriteria, subject)
	}

	return topics[rnd.IntN(len(topics))], nil
}

// Questions выбирает n случайных вопросов категории и перемешивает варианты ответа
func (b *Bank) Questions(category string, n int, rnd engine.Randomizer) ([]models.Question, error) {
	pool := b.data.Categories[category]
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownCriteria, category)
	}

	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	rnd.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	if n > len(idx) {
		n = len(idx)
	}

	out := make([]models.Question, 0, n)
	for _, i := range idx[:n] {
		src := pool[i]

		order := make([]int, len(src.Choices))
		for k := range order {
			order[k] = k
		}
		rnd.Shuffle(len(order), func(a, c int) { order[a], order[c] = order[c], order[a] })

		q := models.Question{
			ID:       fmt.Sprintf("%s-%d", category, i),
			Category: category,
			Prompt:   src.Prompt,
			Choices:  make([]string, len(order)),
		}

		for pos, from := range order {
			q.Choices[pos] = src.Choices[from]
			if from == src.Answer {
				q.Answer = pos
			}
		}

		out = append(out, q)
	}

	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
