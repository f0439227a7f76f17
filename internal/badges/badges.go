// Package badges awards hiking achievements from activity totals.
package badges

import "math"

// Badge identifiers.
const (
	FirstHike         = "firstHike"
	BeginnerHiker     = "beginnerHiker"
	IntermediateHiker = "intermediateHiker"
	ExpertHiker       = "expertHiker"
	FirstDistance     = "firstDistance"
	DistanceMaster    = "distanceMaster"
	MarathonMaster    = "marathonMaster"
	UltraMaster       = "ultraMaster"
)

// Badge describes an achievement and the threshold that unlocks it.
type Badge struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Kind        string  `json:"kind"`
	Threshold   float64 `json:"threshold"`
}

// Level is reached once every badge in Required has been earned.
type Level struct {
	Name     string   `json:"name"`
	Required []string `json:"required"`
}

// Totals are the activity aggregates badges are computed from.
type Totals struct {
	Hikes      int64   `json:"hikes"`
	DistanceKm float64 `json:"distance_km"`
}

// Catalogue lists every badge in award order.
var Catalogue = []Badge{
	{ID: FirstHike, Name: "First Hike", Description: "Complete your first hike", Kind: "hikes", Threshold: 1},
	{ID: BeginnerHiker, Name: "Beginner Hiker", Description: "Complete 5 hikes", Kind: "hikes", Threshold: 5},
	{ID: IntermediateHiker, Name: "Intermediate Hiker", Description: "Complete 15 hikes", Kind: "hikes", Threshold: 15},
	{ID: ExpertHiker, Name: "Expert Hiker", Description: "Complete 30 hikes", Kind: "hikes", Threshold: 30},
	{ID: FirstDistance, Name: "First Kilometre", Description: "Walk 1 km in total", Kind: "distance", Threshold: 1},
	{ID: DistanceMaster, Name: "Distance Master", Description: "Walk 50 km in total", Kind: "distance", Threshold: 50},
	{ID: MarathonMaster, Name: "Marathon Master", Description: "Walk 100 km in total", Kind: "distance", Threshold: 100},
	{ID: UltraMaster, Name: "Ultra Master", Description: "Walk 200 km in total", Kind: "distance", Threshold: 200},
}

// Levels lists the levels from lowest to highest.
var Levels = []Level{
	{Name: "Novice", Required: []string{FirstHike, FirstDistance}},
	{Name: "Enthusiast", Required: []string{BeginnerHiker}},
	{Name: "Explorer", Required: []string{IntermediateHiker, DistanceMaster}},
	{Name: "Master", Required: []string{ExpertHiker, MarathonMaster, UltraMaster}},
}

// Earned returns the ids of the badges unlocked by totals, in catalogue order.
// Distance is compared after rounding to whole kilometres.
func Earned(totals Totals) []string {
	km := math.Round(totals.DistanceKm)
	earned := make([]string, 0, len(Catalogue))
	for _, badge := range Catalogue {
		switch badge.Kind {
		case "hikes":
			if float64(totals.Hikes) >= badge.Threshold {
				earned = append(earned, badge.ID)
			}
		case "distance":
			if km >= badge.Threshold {
				earned = append(earned, badge.ID)
			}
		}
	}
	return earned
}

// CurrentLevel returns the highest level whose requirements are all met. Every
// hiker starts at the first level.
func CurrentLevel(earned []string) string {
	have := make(map[string]struct{}, len(earned))
	for _, id := range earned {
		have[id] = struct{}{}
	}

	current := Levels[0].Name
	for _, level := range Levels {
		complete := true
		for _, required := range level.Required {
			if _, ok := have[required]; !ok {
				complete = false
				break
			}
		}
		if complete {
			current = level.Name
		}
	}
	return current
}

// HigherLevel returns whichever of the two levels ranks higher. Unknown names rank lowest.
func HigherLevel(a, b string) string {
	if levelRank(b) > levelRank(a) {
		return b
	}
	if levelRank(a) < 0 {
		return Levels[0].Name
	}
	return a
}

func levelRank(name string) int {
	for i, level := range Levels {
		if level.Name == name {
			return i
		}
	}
	return -1
}

// Merge keeps every badge already held and adds the ones in next, in catalogue order.
func Merge(previous, next []string) []string {
	have := make(map[string]struct{}, len(previous)+len(next))
	for _, id := range previous {
		have[id] = struct{}{}
	}
	for _, id := range next {
		have[id] = struct{}{}
	}
	merged := make([]string, 0, len(have))
	for _, badge := range Catalogue {
		if _, ok := have[badge.ID]; ok {
			merged = append(merged, badge.ID)
		}
	}
	return merged
}

// NewlyEarned returns the badges in next that are missing from previous.
func NewlyEarned(previous, next []string) []string {
	seen := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		seen[id] = struct{}{}
	}
	var added []string
	for _, id := range next {
		if _, ok := seen[id]; !ok {
			added = append(added, id)
		}
	}
	return added
}
