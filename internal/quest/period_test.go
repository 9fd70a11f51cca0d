package quest

import (
	"testing"
	"time"
)

func TestPeriodWindow(t *testing.T) {
	// Wednesday Aug 26 2026, mid-afternoon.
	now := time.Date(2026, 8, 26, 15, 45, 12, 0, time.UTC)

	tests := []struct {
		qt   QuestType
		want time.Time
	}{
		{TypeDaily, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)},
		{TypeWeekly, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		{TypeMonthly, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := PeriodWindow(tt.qt, now)
		if err != nil {
			t.Fatalf("PeriodWindow(%s) error: %v", tt.qt, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("PeriodWindow(%s) = %v, want %v", tt.qt, got, tt.want)
		}
	}
}

func TestPeriodWindowUnknownType(t *testing.T) {
	if _, err := PeriodWindow(QuestType("yearly"), time.Now()); err == nil {
		t.Error("expected error for unknown quest type")
	}
}

func TestPeriodWindowSundayWeek(t *testing.T) {
	// A Sunday must still anchor to the previous Monday.
	sunday := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	got, err := PeriodWindow(TypeWeekly, sunday)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("weekly window on Sunday = %v, want %v", got, want)
	}
}
