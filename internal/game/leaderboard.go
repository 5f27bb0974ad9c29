package game

import "sort"

type Emotion string

const (
	EmotionPositive Emotion = "positive"
	EmotionNeutral  Emotion = "neutral"
	EmotionNegative Emotion = "negative"
)

type Standing struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Name     string  `json:"player_name"`
	AvatarID string  `json:"avatar_id"`
	Score    int     `json:"score"`
	Emotion  Emotion `json:"emotion"`
}

type Results struct {
	Leaderboard  []Standing `json:"leaderboard"`
	Podium       []Standing `json:"podium"`
	TotalPlayers int        `json:"total_players"`
}

// Rank orders players by score, highest first. Equal scores keep join order.
// The top fifth of ranks is positive and the bottom fifth negative.
func Rank(players []Player) Results {
	sorted := append([]Player(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	n := len(sorted)
	topCut := (n + 4) / 5
	bottomCut := (n * 4) / 5
	leaderboard := make([]Standing, 0, n)
	for i, player := range sorted {
		rank := i + 1
		emotion := EmotionNeutral
		switch {
		case rank <= topCut:
			emotion = EmotionPositive
		case rank > bottomCut:
			emotion = EmotionNegative
		}
		leaderboard = append(leaderboard, Standing{
			Rank:     rank,
			PlayerID: player.ID,
			Name:     player.Name,
			AvatarID: player.AvatarID,
			Score:    player.Score,
			Emotion:  emotion,
		})
	}
	podium := leaderboard
	if len(podium) > 3 {
		podium = podium[:3]
	}
	return Results{
		Leaderboard:  leaderboard,
		Podium:       append([]Standing(nil), podium...),
		TotalPlayers: n,
	}
}
