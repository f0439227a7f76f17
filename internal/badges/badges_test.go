package badges

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEarnedThresholds(t *testing.T) {
	require.Empty(t, Earned(Totals{}))
	require.Equal(t, []string{FirstHike}, Earned(Totals{Hikes: 1, DistanceKm: 0.4}))
	require.Equal(t, []string{FirstHike, FirstDistance}, Earned(Totals{Hikes: 1, DistanceKm: 0.6}))
	require.Equal(t,
		[]string{FirstHike, BeginnerHiker, IntermediateHiker, ExpertHiker, FirstDistance, DistanceMaster, MarathonMaster, UltraMaster},
		Earned(Totals{Hikes: 30, DistanceKm: 200}),
	)
}

func TestCurrentLevel(t *testing.T) {
	cases := []struct {
		totals Totals
		level  string
	}{
		{Totals{}, "Novice"},
		{Totals{Hikes: 1, DistanceKm: 1}, "Novice"},
		{Totals{Hikes: 5, DistanceKm: 10}, "Enthusiast"},
		{Totals{Hikes: 15, DistanceKm: 49}, "Enthusiast"},
		{Totals{Hikes: 15, DistanceKm: 50}, "Explorer"},
		{Totals{Hikes: 30, DistanceKm: 150}, "Explorer"},
		{Totals{Hikes: 30, DistanceKm: 200}, "Master"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.level, CurrentLevel(Earned(tc.totals)), "totals %+v", tc.totals)
	}
}

func TestNewlyEarned(t *testing.T) {
	added := NewlyEarned([]string{FirstHike}, []string{FirstHike, FirstDistance})
	require.Equal(t, []string{FirstDistance}, added)
	require.Empty(t, NewlyEarned([]string{FirstHike}, []string{FirstHike}))
}

func TestLevelNeverDrops(t *testing.T) {
	require.Equal(t, "Explorer", HigherLevel("Explorer", CurrentLevel(Earned(Totals{Hikes: 1, DistanceKm: 1}))))
	require.Equal(t, "Master", HigherLevel("Enthusiast", "Master"))
	require.Equal(t, "Novice", HigherLevel("", CurrentLevel(nil)))
	require.Equal(t, "Novice", HigherLevel("Incepator", "Novice"))
}

func TestMergeKeepsHeldBadges(t *testing.T) {
	merged := Merge([]string{DistanceMaster, FirstHike}, []string{FirstHike, BeginnerHiker})
	require.Equal(t, []string{FirstHike, BeginnerHiker, DistanceMaster}, merged)
	require.Empty(t, Merge(nil, nil))
}
