package output

import (
	"time"

	"github.com/qrave1/Gamefinity/internal/domain/engine"
	"github.com/qrave1/Gamefinity/internal/domain/models"
)

type PlayerView struct {
	ID              string                 `json:"id"`
	DisplayName     string                 `json:"displayName"`
	Alive           bool                   `json:"alive"`
	ConnectionState models.ConnectionState `json:"connectionState"`
	Score           int                    `json:"score"`
	IsHost          bool                   `json:"isHost"`
	Ready           bool                   `json:"ready"`
	Voted           bool                   `json:"voted"`
	Answered        bool                   `json:"answered"`
}

// QuestionView - вопрос тривии. Answer заполнен только у закрытого вопроса.
type QuestionView struct {
	Index    int      `json:"index"`
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Prompt   string   `json:"prompt"`
	Choices  []string `json:"choices"`
	Answer   *int     `json:"answer,omitempty"`
}

// TimerView - текущий отсчет. Клиент считает остаток от serverNow, а не от своих часов.
type TimerView struct {
	Start       time.Time `json:"start"`
	DurationMs  int64     `json:"durationMs"`
	RemainingMs int64     `json:"remainingMs"`
}

type RoomView struct {
	ID       string          `json:"id"`
	Code     string          `json:"code"`
	Kind     models.GameKind `json:"kind"`
	Status   models.Status   `json:"status"`
	Capacity int             `json:"capacity"`
	Criteria string          `json:"criteria"`
	HostID   string          `json:"hostId"`

	Players []PlayerView `json:"players"`

	Round        int          `json:"round"`
	CurrentActor string       `json:"currentActor,omitempty"`
	Phase        models.Phase `json:"phase"`
	Timer        *TimerView   `json:"timer,omitempty"`

	Votes      map[string]string  `json:"votes,omitempty"`
	LastResult *models.VoteResult `json:"lastResult,omitempty"`

	IsSpy      bool   `json:"isSpy"`
	SecretRole string `json:"secretRole,omitempty"`
	Topic      string `json:"topic,omitempty"`

	Winner  models.Faction `json:"winner,omitempty"`
	Leaders []string       `json:"leaders,omitempty"`

	Chat         []models.ChatMessage `json:"chat"`
	RematchReady map[string]bool      `json:"rematchReady,omitempty"`

	Question         *QuestionView `json:"question,omitempty"`
	PreviousQuestion *QuestionView `json:"previousQuestion,omitempty"`
	QuestionCount    int           `json:"questionCount,omitempty"`
	MyAnswer         *int          `json:"myAnswer,omitempty"`

	ServerNow time.Time `json:"serverNow"`
}

// NewRoomView строит снапшот комнаты глазами viewerID.
// Шпион скрыт до конца игры, тема скрыта от шпиона и посторонних,
// ответы и верный вариант открытого вопроса не раскрываются.
func NewRoomView(room *models.Room, policy engine.Policy, viewerID string, now time.Time) *RoomView {
	v := &RoomView{
		ID:           room.ID,
		Code:         room.Code,
		Kind:         room.Kind,
		Status:       room.Status,
		Capacity:     room.Capacity,
		Criteria:     room.Criteria,
		HostID:       room.HostID,
		Round:        room.Round,
		CurrentActor: room.CurrentActor,
		Phase:        room.Phase,
		LastResult:   room.LastResult,
		Winner:       room.Winner,
		Leaders:      room.Leaders,
		Chat:         room.Chat,
		RematchReady: room.RematchReady,
		ServerNow:    now,
	}

	if v.Chat == nil {
		v.Chat = []models.ChatMessage{}
	}

	votingOpen := room.Phase == models.PhasePreparation || room.Phase == models.PhaseVoting
	questionOpen := room.Phase == models.PhaseQuestion

	v.Players = make([]PlayerView, 0, len(room.Players))
	for _, p := range room.Players {
		_, voted := room.Votes[p.ID]
		_, answered := room.Answers[p.ID]

		v.Players = append(v.Players, PlayerView{
			ID:              p.ID,
			DisplayName:     p.DisplayName,
			Alive:           p.Alive,
			ConnectionState: p.Connection,
			Score:           p.Score,
			IsHost:          p.IsHost,
			Ready:           p.Ready,
			Voted:           voted,
			Answered:        questionOpen && answered,
		})
	}

	if !votingOpen && len(room.Votes) > 0 {
		v.Votes = room.Votes
	}

	if start, d, ok := engine.Timer(room, policy); ok {
		v.Timer = &TimerView{
			Start:       start,
			DurationMs:  d.Milliseconds(),
			RemainingMs: engine.Remaining(d, start, now).Milliseconds(),
		}
	}

	if policy.Mode == engine.ModeDeduction {
		v.deduction(room, viewerID)
	} else {
		v.trivia(room, viewerID)
	}

	return v
}

func (v *RoomView) deduction(room *models.Room, viewerID string) {
	if room.SecretRole == "" {
		return
	}

	v.IsSpy = room.SecretRole == viewerID

	if room.Status == models.StatusFinished {
		v.SecretRole = room.SecretRole
		v.Topic = room.Topic

		return
	}

	if !v.IsSpy && room.Player(viewerID) != nil {
		v.Topic = room.Topic
	}
}

func (v *RoomView) trivia(room *models.Room, viewerID string) {
	v.QuestionCount = len(room.Questions)

	if room.Status == models.StatusPlaying {
		if q, ok := room.CurrentQuestion(); ok {
			v.Question = questionView(room.QuestionIndex, q, false)
		}

		if choice, ok := room.Answers[viewerID]; ok {
			v.MyAnswer = &choice
		}
	}

	if room.Status != models.StatusWaiting && room.QuestionIndex > 0 && room.QuestionIndex <= len(room.Questions) {
		i := room.QuestionIndex - 1
		v.PreviousQuestion = questionView(i, room.Questions[i], true)
	}
}

func questionView(index int, q models.Question, reveal bool) *QuestionView {
	qv := &QuestionView{
		Index:    index,
		ID:       q.ID,
		Category: q.Category,
		Prompt:   q.Prompt,
		Choices:  q.Choices,
	}

	if reveal {
		answer := q.Answer
		qv.Answer = &answer
	}

	return qv
}
