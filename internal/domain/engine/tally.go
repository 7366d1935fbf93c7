package engine

import (
	"sort"

	"github.com/qrave1/Gamefinity/internal/domain/models"
)

// Tally считает голоса. Побеждает цель со строго наибольшим числом голосов,
// набравшая не меньше ceil(n/2), где n - число голосов без skip.
// Ничья за первое место означает, что никто не выбывает.
func Tally(votes map[string]string) models.VoteResult {
	res := models.VoteResult{Counts: make(map[string]int)}

	nonSkip := 0
	for _, target := range votes {
		if target == models.SkipVote || target == "" {
			res.Skips++
			continue
		}

		res.Counts[target]++
		nonSkip++
	}

	res.Threshold = (nonSkip + 1) / 2
	if nonSkip == 0 {
		return res
	}

	targets := make([]string, 0, len(res.Counts))
	for t := range res.Counts {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	leader := ""
	for _, t := range targets {
		c := res.Counts[t]
		switch {
		case c > res.Count:
			leader, res.Count, res.Tie = t, c, false
		case c == res.Count:
			res.Tie = true
		}
	}

	if res.Tie || res.Count < res.Threshold {
		return res
	}

	res.Eliminated = leader

	return res
}

// ValidVotes отбрасывает голоса за игроков, которые больше не могут быть целью
func ValidVotes(room *models.Room) map[string]string {
	out := make(map[string]string, len(room.Votes))
	for voter, target := range room.Votes {
		if target == models.SkipVote {
			out[voter] = target
			continue
		}

		if p := room.Player(target); p != nil && p.Eligible() {
			out[voter] = target
		}
	}

	return out
}
