package engine

// NextTurn возвращает следующего допустимого игрока после current в порядке order.
// Если current недопустим, он считается стоящим перед первым допустимым игроком.
// Пустая строка - допустимых игроков нет.
func NextTurn(order []string, eligible map[string]bool, current string) string {
	idx := -1
	for i, id := range order {
		if id == current && eligible[id] {
			idx = i
			break
		}
	}

	if idx == -1 {
		for _, id := range order {
			if eligible[id] {
				return id
			}
		}

		return ""
	}

	for step := 1; step <= len(order); step++ {
		id := order[(idx+step)%len(order)]
		if eligible[id] {
			return id
		}
	}

	return ""
}

// RoundComplete - turnsTaken покрывает всех допустимых игроков
func RoundComplete(eligible []string, turnsTaken map[string]bool) bool {
	for _, id := range eligible {
		if !turnsTaken[id] {
			return false
		}
	}

	return true
}

func set(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}

	return m
}

// pending возвращает допустимых игроков, еще не походивших в раунде
func pending(eligible []string, turnsTaken map[string]bool) map[string]bool {
	m := make(map[string]bool, len(eligible))
	for _, id := range eligible {
		if !turnsTaken[id] {
			m[id] = true
		}
	}

	return m
}
