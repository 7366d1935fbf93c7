package models

import (
	"time"
)

type GameKind string

const (
	KindBrainMyst GameKind = "brainmyst"
	KindQuizBlitz GameKind = "quizblitz"
	KindITApp     GameKind = "itapp"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Phase - подфаза голосования или вопроса. PhaseNone означает, что фаза не идет.
type Phase string

const (
	PhaseNone        Phase = "none"
	PhasePreparation Phase = "preparation"
	PhaseVoting      Phase = "voting"
	PhaseResult      Phase = "result"
	PhaseQuestion    Phase = "question"
)

type Faction string

const (
	FactionNone      Faction = ""
	FactionInnocents Faction = "innocents"
	FactionSpy       Faction = "spy"
	// FactionPlayers - победители тривии перечислены в Room.Leaders
	FactionPlayers Faction = "players"
)

// SkipVote - голос "пропустить"
const SkipVote = "skip"

type ChatMessage struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

type Question struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Prompt   string   `json:"prompt"`
	Choices  []string `json:"choices"`
	Answer   int      `json:"answer"`
}

// VoteResult - итог подсчета голосов
type VoteResult struct {
	Eliminated string         `json:"eliminated,omitempty"`
	Count      int            `json:"count"`
	Threshold  int            `json:"threshold"`
	Counts     map[string]int `json:"counts"`
	Skips      int            `json:"skips"`
	Tie        bool           `json:"tie"`
}

type Room struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Kind      GameKind  `json:"kind"`
	Status    Status    `json:"status"`
	Capacity  int       `json:"capacity"`
	Criteria  string    `json:"criteria"`
	HostID    string    `json:"hostId"`
	Players   []*Player `json:"players"`
	CreatedAt time.Time `json:"createdAt"`

	Round        int             `json:"round"`
	CurrentActor string          `json:"currentActor"`
	TurnStart    time.Time       `json:"turnStart"`
	TurnsTaken   map[string]bool `json:"turnsTaken"`

	Phase      Phase             `json:"phase"`
	PhaseStart time.Time         `json:"phaseStart"`
	Votes      map[string]string `json:"votes"`
	LastResult *VoteResult       `json:"lastResult"`

	SecretRole string   `json:"secretRole"`
	Topic      string   `json:"topic"`
	Winner     Faction  `json:"winner"`
	Leaders    []string `json:"leaders"`

	Chat []ChatMessage `json:"chat"`

	// RematchReady заполнен только пока Status = finished
	RematchReady map[string]bool `json:"rematchReady"`

	Questions     []Question     `json:"questions"`
	QuestionIndex int            `json:"questionIndex"`
	Answers       map[string]int `json:"answers"`
}

// NewRoom создает пустую комнату в статусе waiting
func NewRoom(id, code string, kind GameKind, capacity int, criteria string, now time.Time) *Room {
	return &Room{
		ID:         id,
		Code:       code,
		Kind:       kind,
		Status:     StatusWaiting,
		Capacity:   capacity,
		Criteria:   criteria,
		Players:    make([]*Player, 0, capacity),
		CreatedAt:  now,
		Round:      1,
		Phase:      PhaseNone,
		TurnsTaken: map[string]bool{},
		Votes:      map[string]string{},
		Answers:    map[string]int{},
	}
}

func (r *Room) Player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}

	return nil
}

// Order возвращает идентификаторы игроков в порядке входа
func (r *Room) Order() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}

	return ids
}

// Eligible возвращает живых игроков в сети в порядке входа
func (r *Room) Eligible() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Eligible() {
			ids = append(ids, p.ID)
		}
	}

	return ids
}

func (r *Room) Online() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Online() {
			ids = append(ids, p.ID)
		}
	}

	return ids
}

func (r *Room) AliveCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Alive {
			n++
		}
	}

	return n
}

func (r *Room) RemovePlayer(id string) bool {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}

	return false
}

// CurrentQuestion возвращает открытый вопрос тривии
func (r *Room) CurrentQuestion() (Question, bool) {
	if r.QuestionIndex < 0 || r.QuestionIndex >= len(r.Questions) {
		return Question{}, false
	}

	return r.Questions[r.QuestionIndex], true
}

// Clone делает глубокую копию комнаты
func (r *Room) Clone() *Room {
	c := *r

	c.Players = make([]*Player, len(r.Players))
	for i, p := range r.Players {
		pc := *p
		c.Players[i] = &pc
	}

	c.TurnsTaken = cloneMap(r.TurnsTaken)
	c.Votes = cloneMap(r.Votes)
	c.RematchReady = cloneMap(r.RematchReady)
	c.Answers = cloneMap(r.Answers)

	if r.LastResult != nil {
		lr := *r.LastResult
		lr.Counts = cloneMap(r.LastResult.Counts)
		c.LastResult = &lr
	}

	c.Leaders = append([]string(nil), r.Leaders...)
	c.Chat = append([]ChatMessage(nil), r.Chat...)

	if r.Questions != nil {
		c.Questions = make([]Question, len(r.Questions))
		for i, q := range r.Questions {
			q.Choices = append([]string(nil), q.Choices...)
			c.Questions[i] = q
		}
	}

	return &c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}

	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
