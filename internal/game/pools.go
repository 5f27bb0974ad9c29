package game

import "context"

var defaultWords = []string{
	"Dancing", "Swimming", "Cooking", "Running", "Sleeping",
	"Reading", "Writing", "Painting", "Singing", "Jumping",
	"Laughing", "Crying", "Thinking", "Watching", "Listening",
	"Playing Guitar", "Riding Bike", "Driving Car", "Flying Plane", "Sailing Boat",
	"Climbing Mountain", "Diving Deep", "Skiing", "Skateboarding", "Surfing",
	"Bowling", "Tennis", "Soccer", "Basketball", "Baseball",
	"Gymnastics", "Yoga", "Boxing", "Wrestling", "Weightlifting",
	"Fishing", "Hunting", "Camping", "Hiking", "Picnicking",
	"Shopping", "Cooking Dinner", "Having Breakfast", "Making Coffee", "Baking Cake",
	"Eating Pizza", "Drinking Water", "Making Sandwich", "Peeling Orange", "Cutting Meat",
}

var defaultCategories = []string{
	"Movies", "TV Shows", "Books", "Animals", "Sports",
	"Professions", "Actions", "Objects", "Food", "Places",
	"Historical Events", "Emotions", "Music Genres", "Hobbies", "Technology",
	"Weather", "Vehicles", "Superheroes", "Fairy Tales", "Countries",
}

// WordSource supplies the pools a round draws its word and category from.
// WordsIn narrows the word pool to one category and falls back to the whole
// pool when the category has no words of its own.
type WordSource interface {
	Words(ctx context.Context) ([]string, error)
	WordsIn(ctx context.Context, category string) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
}

type StaticWords struct {
	WordList     []string
	CategoryList []string
	ByCategory   map[string][]string
}

func DefaultWords() StaticWords {
	return StaticWords{
		WordList:     append([]string(nil), defaultWords...),
		CategoryList: append([]string(nil), defaultCategories...),
	}
}

func (s StaticWords) Words(context.Context) ([]string, error) {
	return s.WordList, nil
}

func (s StaticWords) WordsIn(ctx context.Context, category string) ([]string, error) {
	if words := s.ByCategory[category]; len(words) > 0 {
		return words, nil
	}
	return s.Words(ctx)
}

func (s StaticWords) Categories(context.Context) ([]string, error) {
	return s.CategoryList, nil
}
