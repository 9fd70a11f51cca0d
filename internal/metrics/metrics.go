package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	QuestCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_completions_total",
			Help: "Accepted quest completions by quest type",
		},
		[]string{"quest_type"},
	)
	StreakIncrements = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_increments_total",
			Help: "Daily streak increments (all active daily quests done)",
		},
	)
	StreakResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_resets_total",
			Help: "Streaks zeroed by the lazy missed-day check",
		},
	)
	WeeklyBonusPayouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weekly_bonus_payouts_total",
			Help: "Week transitions that distributed leaderboard bonuses",
		},
	)
	StorePurchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_purchases_total",
			Help: "Completed store purchases by product category",
		},
		[]string{"category"},
	)
)

// Register registers the engine counters. Called once from main.
func Register() {
	prometheus.MustRegister(
		QuestCompletions,
		StreakIncrements,
		StreakResets,
		WeeklyBonusPayouts,
		StorePurchases,
	)
}
