package domain

// MealType identifies which meal of the day a slot holds.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnacks    MealType = "snacks"
)

// ValidMealTypes is the canonical set of accepted meal type strings.
var ValidMealTypes = map[string]bool{
	"breakfast": true, "lunch": true, "dinner": true, "snacks": true,
}

// NormalizeMealType maps an arbitrary payload value onto a known MealType.
// Unknown or empty values default to dinner.
func NormalizeMealType(s string) MealType {
	if ValidMealTypes[s] {
		return MealType(s)
	}
	return MealDinner
}

// MealStatus is the lifecycle state of a single meal slot.
type MealStatus string

const (
	StatusPlanned  MealStatus = "planned"
	StatusCooked   MealStatus = "cooked"
	StatusFrozen   MealStatus = "frozen"
	StatusConsumed MealStatus = "consumed"
	StatusSkipped  MealStatus = "skipped"
)

// ValidMealStatuses is the canonical set of accepted status strings.
var ValidMealStatuses = map[string]bool{
	"planned": true, "cooked": true, "frozen": true,
	"consumed": true, "skipped": true,
}

// NormalizeMealStatus maps an arbitrary payload value onto a known
// MealStatus. Unknown or empty values default to planned.
func NormalizeMealStatus(s string) MealStatus {
	if ValidMealStatuses[s] {
		return MealStatus(s)
	}
	return StatusPlanned
}

// SubscriptionTier is the user's billing plan as reported by the backend.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "FREE"
	TierStarter SubscriptionTier = "STARTER"
	TierPlus    SubscriptionTier = "PLUS"
	TierFamily  SubscriptionTier = "FAMILY"
)

// UnlimitedDuration is the duration-limit sentinel for tiers without a
// meal-plan length cap.
const UnlimitedDuration = -1
