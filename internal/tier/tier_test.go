package tier

import "testing"

func TestForStreakBoundaries(t *testing.T) {
	tests := []struct {
		streak       int
		wantName     string
		wantDiscount int
	}{
		{0, "Bronze", 0},
		{6, "Bronze", 0},
		{7, "Silver", 5},
		{29, "Silver", 5},
		{30, "Gold", 10},
		{89, "Gold", 10},
		{90, "Platinum", 15},
		{179, "Platinum", 15},
		{180, "Diamond", 20},
		{500, "Diamond", 20},
		{-3, "Bronze", 0},
	}

	for _, tt := range tests {
		b := ForStreak(tt.streak)
		if b.Name != tt.wantName || b.DiscountPercent != tt.wantDiscount {
			t.Errorf("ForStreak(%d) = %s/%d%%, want %s/%d%%",
				tt.streak, b.Name, b.DiscountPercent, tt.wantName, tt.wantDiscount)
		}
	}
}

func TestNext(t *testing.T) {
	next, days := Next(25)
	if next == nil || next.Name != "Gold" {
		t.Fatalf("Next(25) tier = %v, want Gold", next)
	}
	if days != 5 {
		t.Errorf("Next(25) days = %d, want 5", days)
	}

	if top, _ := Next(200); top != nil {
		t.Errorf("Next(200) = %v, want nil at Diamond", top)
	}
}

func TestFinalPrice(t *testing.T) {
	tests := []struct {
		base     float64
		discount int
		want     float64
	}{
		{50.00, 10, 45.00},
		{50.00, 0, 50.00},
		{19.99, 5, 18.99}, // 18.9905 rounds down
		{10.00, 15, 8.50},
		{33.33, 10, 30.00}, // 29.997 rounds half-up
		{100.00, 20, 80.00},
	}

	for _, tt := range tests {
		if got := FinalPrice(tt.base, tt.discount); got != tt.want {
			t.Errorf("FinalPrice(%.2f, %d) = %.4f, want %.2f", tt.base, tt.discount, got, tt.want)
		}
	}
}

func TestDiscountFor(t *testing.T) {
	if got := DiscountFor("Gold"); got != 10 {
		t.Errorf("DiscountFor(Gold) = %d, want 10", got)
	}
	if got := DiscountFor("nope"); got != 0 {
		t.Errorf("DiscountFor(nope) = %d, want 0", got)
	}
}
