package game

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Selector picks the next actor and the round's category and word.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector(seed uint64) *Selector {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Selector{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Selector) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Eligible filters players who have not taken a turn and are idle.
func Eligible(players []*Player) []*Player {
	eligible := make([]*Player, 0, len(players))
	for _, player := range players {
		if !player.HasPlayed && player.Status == PlayerWaiting {
			eligible = append(eligible, player)
		}
	}
	return eligible
}

func (s *Selector) SelectPlayer(players []*Player) (*Player, error) {
	eligible := Eligible(players)
	if len(eligible) == 0 {
		return nil, ErrNoPlayersLeft
	}
	return eligible[s.intn(len(eligible))], nil
}

// SelectCategory draws from the categories not used yet, falling back to the
// whole pool once every category has been used.
func (s *Selector) SelectCategory(used, all []string) string {
	if len(all) == 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(used))
	for _, category := range used {
		seen[category] = struct{}{}
	}
	fresh := make([]string, 0, len(all))
	for _, category := range all {
		if _, ok := seen[category]; !ok {
			fresh = append(fresh, category)
		}
	}
	if len(fresh) == 0 {
		fresh = all
	}
	return fresh[s.intn(len(fresh))]
}

func (s *Selector) SelectWord(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[s.intn(len(pool))]
}
