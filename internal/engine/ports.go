package engine

import (
	"context"
	"time"

	"github.com/mkowalczyk/platecal/internal/api"
	"github.com/mkowalczyk/platecal/internal/domain"
)

// Gateway is the backend surface the controller drives. Satisfied by
// api.Client; tests substitute a fake.
type Gateway interface {
	FetchPlans(ctx context.Context, start, end time.Time, includeRecipes bool) ([]domain.Plan, error)
	Generate(ctx context.Context, req api.GenerateRequest) ([]domain.Plan, error)
	UpdateDayStatus(ctx context.Context, planID string, dayIndex int, recipeID string, status domain.MealStatus) error
	SkipPlanDay(ctx context.Context, planID string, dayIndex int, skip bool) error
	SkipDate(ctx context.Context, dateKey string) error
	UnskipDate(ctx context.Context, dateKey string) error
	DeletePlan(ctx context.Context, planID string) error
	FetchRecipes(ctx context.Context, recipeIDs []string) (map[string]*domain.RecipeSummary, error)
	FetchSkippedDays(ctx context.Context, start, end time.Time) ([]string, error)
	FetchSubscription(ctx context.Context) (*api.Subscription, error)
	AddFreezerItem(ctx context.Context, item api.FreezerItem) error
}

// SnapshotStore persists the last authoritative window so a fresh session
// can render before its first fetch completes. Implemented by cache.Store.
type SnapshotStore interface {
	Save(ctx context.Context, windowStart string, plans []domain.Plan, skippedDays []string) error
	Load(ctx context.Context, windowStart string) ([]domain.Plan, []string, error)
}
