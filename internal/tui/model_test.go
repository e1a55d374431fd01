package tui

import (
	"context"
	"testing"
	"time"

	"github.com/mkowalczyk/platecal/internal/api"
	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/mkowalczyk/platecal/internal/engine"
	"github.com/mkowalczyk/platecal/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	plans         []domain.Plan
	skipPlanCalls []string
	generateReqs  []api.GenerateRequest
	statusCalls   []string
}

func (s *stubGateway) FetchPlans(ctx context.Context, start, end time.Time, includeRecipes bool) ([]domain.Plan, error) {
	return s.plans, nil
}

func (s *stubGateway) Generate(ctx context.Context, req api.GenerateRequest) ([]domain.Plan, error) {
	s.generateReqs = append(s.generateReqs, req)
	return s.plans, nil
}

func (s *stubGateway) UpdateDayStatus(ctx context.Context, planID string, dayIndex int, recipeID string, status domain.MealStatus) error {
	s.statusCalls = append(s.statusCalls, planID+":"+string(status))
	return nil
}

func (s *stubGateway) SkipPlanDay(ctx context.Context, planID string, dayIndex int, skip bool) error {
	s.skipPlanCalls = append(s.skipPlanCalls, planID)
	return nil
}

func (s *stubGateway) SkipDate(ctx context.Context, dateKey string) error   { return nil }
func (s *stubGateway) UnskipDate(ctx context.Context, dateKey string) error { return nil }
func (s *stubGateway) DeletePlan(ctx context.Context, planID string) error  { return nil }

func (s *stubGateway) FetchRecipes(ctx context.Context, recipeIDs []string) (map[string]*domain.RecipeSummary, error) {
	return nil, nil
}

func (s *stubGateway) FetchSkippedDays(ctx context.Context, start, end time.Time) ([]string, error) {
	return nil, nil
}

func (s *stubGateway) FetchSubscription(ctx context.Context) (*api.Subscription, error) {
	return &api.Subscription{Tier: domain.TierStarter, DurationLimit: 7}, nil
}

func (s *stubGateway) AddFreezerItem(ctx context.Context, item api.FreezerItem) error { return nil }

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)

func stubWeekPlan() domain.Plan {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	p := domain.Plan{ID: "p1", StartDate: start, EndDate: start.AddDate(0, 0, 6)}
	for i := 0; i < 7; i++ {
		p.Days = append(p.Days, domain.MealSlot{
			PlanID:   "p1",
			Date:     start.AddDate(0, 0, i),
			DayIndex: i,
			RecipeID: "r1",
			Recipe:   &domain.RecipeSummary{ID: "r1", Title: "Chili"},
			MealType: domain.MealDinner,
			Status:   domain.StatusPlanned,
		})
	}
	return p
}

func newTestModel(t *testing.T, gw *stubGateway) *teatest.Driver {
	t.Helper()
	eng := engine.New(gw, engine.Options{
		UserID: "user-1",
		Now:    func() time.Time { return fixedNow },
		Schedule: func(d time.Duration, fn func()) func() {
			return func() {}
		},
	})
	driver := teatest.New(t, New(eng))
	driver.DrainInit()
	return driver
}

func TestModel_BootShowsCalendar(t *testing.T) {
	gw := &stubGateway{plans: []domain.Plan{stubWeekPlan()}}
	driver := newTestModel(t, gw)

	view := driver.View()
	assert.Contains(t, view, "2024-03-10 — 2024-03-16")
	assert.Contains(t, view, "Chili")
	assert.Contains(t, view, "Sun")
}

func TestModel_PagingAdvancesWindow(t *testing.T) {
	gw := &stubGateway{plans: []domain.Plan{stubWeekPlan()}}
	driver := newTestModel(t, gw)

	driver.PressKey('n')
	assert.Contains(t, driver.View(), "2024-03-17 — 2024-03-23")

	driver.PressKey('p')
	assert.Contains(t, driver.View(), "2024-03-10 — 2024-03-16")
}

func TestModel_SkipSelectedDay(t *testing.T) {
	gw := &stubGateway{plans: []domain.Plan{stubWeekPlan()}}
	driver := newTestModel(t, gw)

	driver.PressKey('s')

	require.Equal(t, []string{"p1"}, gw.skipPlanCalls)
	assert.Contains(t, driver.View(), "skipped")
}

func TestModel_StatusKeysUpdateSlot(t *testing.T) {
	gw := &stubGateway{plans: []domain.Plan{stubWeekPlan()}}
	driver := newTestModel(t, gw)

	driver.PressKey('c')

	require.Equal(t, []string{"p1:cooked"}, gw.statusCalls)
	assert.Contains(t, driver.View(), "cooked")
}

func TestModel_GenerateConflictAsksForOverwrite(t *testing.T) {
	gw := &stubGateway{plans: []domain.Plan{stubWeekPlan()}}
	driver := newTestModel(t, gw)

	// a plan already covers the window, so generate hits the conflict gate
	driver.PressKey('g')
	assert.Contains(t, driver.View(), "overwrite")
	assert.Empty(t, gw.generateReqs)

	driver.PressKey('o')
	require.Len(t, gw.generateReqs, 1)
	assert.True(t, gw.generateReqs[0].Overwrite)
}

func TestModel_QuitKey(t *testing.T) {
	gw := &stubGateway{plans: []domain.Plan{stubWeekPlan()}}
	driver := newTestModel(t, gw)

	driver.PressKey('q')
	assert.True(t, driver.Quitting)
}
