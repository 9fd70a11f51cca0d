package user

type CreateUserRequest struct {
	ClerkID  string `json:"clerkId" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type UpdateProfileRequest struct {
	Username string `json:"username,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// TierInfo is the derived tier view returned by GET /user/tier.
type TierInfo struct {
	TierName          string  `json:"tier_name"`
	CurrentStreak     int     `json:"current_streak"`
	DiscountPercent   int     `json:"discount_percentage"`
	TierColor         string  `json:"tier_color"`
	TierIcon          string  `json:"tier_icon"`
	NextTier          *string `json:"next_tier"`
	StreaksToNextTier *int    `json:"streaks_to_next_tier"`
}
