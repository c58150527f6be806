package game

import (
	"math/rand"
	"sync"
	"time"

	"rps_ultimate/internal/domain"
)

// SmartRate is the chance the opponent counters the player's favourite move.
const SmartRate = 0.7

// Opponent is the single-player AI. It is a biased random process: with
// probability SmartRate it plays the counter of the most frequent move in
// the player's history, otherwise (or with no history) it picks uniformly.
type Opponent struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewOpponent(src rand.Source) *Opponent {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Opponent{rng: rand.New(src)}
}

func (o *Opponent) NextMove(history []domain.Move) domain.Move {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(history) > 0 && o.rng.Float64() < SmartRate {
		if fav, ok := MostFrequent(history); ok {
			return Counter(fav)
		}
	}
	return domain.Moves[o.rng.Intn(len(domain.Moves))]
}

// MostFrequent returns the move seen most often. Ties go to the move that
// comes first in rock, paper, scissors order.
func MostFrequent(history []domain.Move) (domain.Move, bool) {
	var counts [len(domain.Moves)]int
	for _, m := range history {
		for i, candidate := range domain.Moves {
			if m == candidate {
				counts[i]++
			}
		}
	}

	best := -1
	for i, n := range counts {
		if n == 0 {
			continue
		}
		if best < 0 || n > counts[best] {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return domain.Moves[best], true
}
