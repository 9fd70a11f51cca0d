package tier

import "math"

// Benefit is one row of the static tier table: a streak bracket and the
// store discount it grants.
type Benefit struct {
	Name            string `json:"tier_name"`
	MinStreak       int    `json:"min_streak"`
	MaxStreak       int    `json:"max_streak"` // -1 means unbounded
	DiscountPercent int    `json:"discount_percent"`
	Color           string `json:"tier_color"`
	Icon            string `json:"tier_icon"`
}

// Benefits is ordered from lowest to highest tier.
var Benefits = []Benefit{
	{Name: "Bronze", MinStreak: 0, MaxStreak: 6, DiscountPercent: 0, Color: "#CD7F32", Icon: "🥉"},
	{Name: "Silver", MinStreak: 7, MaxStreak: 29, DiscountPercent: 5, Color: "#C0C0C0", Icon: "🥈"},
	{Name: "Gold", MinStreak: 30, MaxStreak: 89, DiscountPercent: 10, Color: "#FFD700", Icon: "🥇"},
	{Name: "Platinum", MinStreak: 90, MaxStreak: 179, DiscountPercent: 15, Color: "#E5E4E2", Icon: "💎"},
	{Name: "Diamond", MinStreak: 180, MaxStreak: -1, DiscountPercent: 20, Color: "#B9F2FF", Icon: "💠"},
}

// ForStreak returns the highest tier whose MinStreak <= streak.
func ForStreak(streak int) Benefit {
	if streak < 0 {
		streak = 0
	}
	current := Benefits[0]
	for _, b := range Benefits {
		if streak >= b.MinStreak {
			current = b
		}
	}
	return current
}

// DiscountFor returns the discount percent for a tier name, 0 if unknown.
func DiscountFor(name string) int {
	for _, b := range Benefits {
		if b.Name == name {
			return b.DiscountPercent
		}
	}
	return 0
}

// Next returns the tier above the one covering streak, or nil at the top,
// plus the streak days remaining to reach it.
func Next(streak int) (*Benefit, int) {
	current := ForStreak(streak)
	for i, b := range Benefits {
		if b.Name == current.Name && i+1 < len(Benefits) {
			next := Benefits[i+1]
			return &next, next.MinStreak - streak
		}
	}
	return nil, 0
}

// FinalPrice applies a percentage discount to a base price and rounds
// half-up to 2 decimal places.
func FinalPrice(basePrice float64, discountPercent int) float64 {
	discounted := basePrice * (1 - float64(discountPercent)/100)
	return math.Round(discounted*100) / 100
}
