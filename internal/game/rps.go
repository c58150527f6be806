package game

import "rps_ultimate/internal/domain"

// Resolve decides a round from a's point of view.
// rock beats scissors, scissors beats paper, paper beats rock.
func Resolve(a, b domain.Move) domain.Outcome {
	if a == b {
		return domain.OutcomeTie
	}

	switch a {
	case domain.MoveRock:
		if b == domain.MoveScissors {
			return domain.OutcomeWin
		}
	case domain.MovePaper:
		if b == domain.MoveRock {
			return domain.OutcomeWin
		}
	case domain.MoveScissors:
		if b == domain.MovePaper {
			return domain.OutcomeWin
		}
	}

	return domain.OutcomeLose
}

// Counter returns the move that beats m.
func Counter(m domain.Move) domain.Move {
	switch m {
	case domain.MoveRock:
		return domain.MovePaper
	case domain.MovePaper:
		return domain.MoveScissors
	default:
		return domain.MoveRock
	}
}
