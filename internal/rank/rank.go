package rank

// Tier is a ranked ladder tier. Order is 1 for the top tier; the smaller
// the number the higher the tier.
type Tier string

const (
	Challenger Tier = "CHALLENGER"
	Diamond    Tier = "DIAMOND"
	Platinum   Tier = "PLATINUM"
	Gold       Tier = "GOLD"
	Silver     Tier = "SILVER"
	Bronze     Tier = "BRONZE"
)

const basePoints = 10

var tierOrder = map[Tier]int{
	Challenger: 1,
	Diamond:    2,
	Platinum:   3,
	Gold:       4,
	Silver:     5,
	Bronze:     6,
}

// 랭크 이름 한글 표기
var tierNames = map[Tier]string{
	Bronze:     "브론즈",
	Silver:     "실버",
	Gold:       "골드",
	Platinum:   "플래티넘",
	Diamond:    "다이아몬드",
	Challenger: "챌린저",
}

// Order returns the sort order of the tier, 0 for an unknown tier.
func (t Tier) Order() int { return tierOrder[t] }

// Name returns the Korean display name of the tier.
func (t Tier) Name() string { return tierNames[t] }

// TierForPoints maps ranked points to a tier. Below 50 points the player is
// unranked and ok is false.
func TierForPoints(points int) (Tier, bool) {
	switch {
	case points >= 1600:
		return Challenger, true
	case points >= 800:
		return Diamond, true
	case points >= 400:
		return Platinum, true
	case points >= 200:
		return Gold, true
	case points >= 100:
		return Silver, true
	case points >= 50:
		return Bronze, true
	default:
		return "", false
	}
}

// PointsChange computes the signed points delta for one finished ranked
// game. Base is 10, adjusted by twice the tier distance: an upset win pays
// more, beating a lower tier pays less (floored at 0), and losing downward
// costs extra.
func PointsChange(my, opponent Tier, isWinner bool) int {
	diff := my.Order() - opponent.Order()
	bonus := 2 * abs(diff)

	if isWinner {
		switch {
		case diff > 0:
			return basePoints + bonus
		case diff < 0:
			return max(0, basePoints-bonus)
		default:
			return basePoints
		}
	}
	switch {
	case diff < 0:
		return -(basePoints + bonus)
	case diff > 0:
		return -(basePoints - bonus)
	default:
		return -basePoints
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
