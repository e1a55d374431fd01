// Package engine implements the scheduling controller: it owns the
// navigation cursor, the plan list, the consolidated day index, and the
// skipped-day set, and is the only writer of that state. Mutating actions
// apply optimistically, call the gateway, and either reconcile through
// delayed background fetches or roll back to a pre-action snapshot.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mkowalczyk/platecal/internal/calendar"
	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/mkowalczyk/platecal/internal/transform"
)

var (
	// ErrValidation indicates a mutation was rejected before any network
	// call because its addressing inputs were missing or inconsistent.
	ErrValidation = errors.New("invalid request")

	// ErrBusy indicates a conflicting operation of the same kind is still
	// in flight.
	ErrBusy = errors.New("operation already in progress")
)

const (
	// navigationDebounce delays the re-fetch after a navigation step so
	// rapid paging issues only one fetch for the final cursor.
	navigationDebounce = 150 * time.Millisecond

	// defaultPlanDuration is the generation length used on unlimited tiers
	// when the user has no explicit preference.
	defaultPlanDuration = 28
)

// reconciliationDelays stages the post-mutation background fetches. The
// backend enriches a freshly generated plan asynchronously; fetching
// immediately would read stale data and clobber the optimistic state.
var reconciliationDelays = []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond}

// Options configures an Engine. Zero values select production defaults.
type Options struct {
	UserID string
	Store  SnapshotStore

	// LogWriter receives engine event lines. Defaults to io.Discard.
	LogWriter io.Writer

	// DefaultDuration overrides the unlimited-tier generation length.
	DefaultDuration int

	// Now and Schedule are timing hooks for tests. Schedule must run fn
	// after the delay and return a cancel function.
	Now      func() time.Time
	Schedule func(delay time.Duration, fn func()) (cancel func())
}

// Engine is the scheduling controller. All exported methods are safe for
// concurrent use; state is guarded by a single mutex and every mutation is
// a discrete non-reentrant critical section around its network call.
type Engine struct {
	gw    Gateway
	store SnapshotStore
	logw  io.Writer

	userID          string
	defaultDuration int
	now             func() time.Time
	schedule        func(time.Duration, func()) func()

	mu            sync.Mutex
	cursor        time.Time
	tier          domain.SubscriptionTier
	durationLimit int

	plans   []domain.Plan
	index   domain.DayIndex
	skipped domain.SkippedDaySet
	window  domain.CalendarWindow

	loading      bool
	generating   bool
	updating     bool
	skipInFlight bool

	fetchSeq    uint64
	fetchCancel context.CancelFunc
	navCancel   func()
}

// New creates an engine positioned on today's date. Call Bootstrap before
// rendering to load the subscription tier and the first window.
func New(gw Gateway, opts Options) *Engine {
	e := &Engine{
		gw:              gw,
		store:           opts.Store,
		logw:            opts.LogWriter,
		userID:          opts.UserID,
		defaultDuration: opts.DefaultDuration,
		now:             opts.Now,
		schedule:        opts.Schedule,
		skipped:         domain.NewSkippedDaySet(),
		index:           make(domain.DayIndex),
	}
	if e.logw == nil {
		e.logw = io.Discard
	}
	if e.defaultDuration <= 0 {
		e.defaultDuration = defaultPlanDuration
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.schedule == nil {
		e.schedule = func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		}
	}
	e.cursor = domain.Midnight(e.now())
	e.durationLimit = domain.UnlimitedDuration
	return e
}

// View is the read model handed to the rendering layer. Maps and slices
// are copies; the caller may hold them across engine mutations.
type View struct {
	Cursor  time.Time
	Window  domain.CalendarWindow
	Index   domain.DayIndex
	Plans   []domain.Plan
	Skipped domain.SkippedDaySet
	Tier    domain.SubscriptionTier

	Loading    bool
	Generating bool
	Updating   bool
}

// View returns a consistent copy of the current state.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return View{
		Cursor:     e.cursor,
		Window:     e.window,
		Index:      e.index.Clone(),
		Plans:      clonePlans(e.plans),
		Skipped:    e.skipped.Clone(),
		Tier:       e.tier,
		Loading:    e.loading,
		Generating: e.generating,
		Updating:   e.updating,
	}
}

// Bootstrap loads the subscription tier, seeds the view from the snapshot
// store when one covers the current window, and performs the first fetch.
func (e *Engine) Bootstrap(ctx context.Context) error {
	sub, err := e.gw.FetchSubscription(ctx)
	if err != nil {
		return fmt.Errorf("loading subscription: %w", err)
	}

	e.mu.Lock()
	e.tier = sub.Tier
	e.durationLimit = sub.DurationLimit
	window := calendar.ComputeWindow(e.cursor, e.durationLimit, e.plans)
	e.window = window
	e.mu.Unlock()

	if e.store != nil {
		plans, skippedDays, err := e.store.Load(ctx, domain.DateKey(window.StartDate))
		if err != nil {
			e.logf("snapshot load failed: %v", err)
		} else if len(plans) > 0 {
			e.mu.Lock()
			e.applyWindowLocked(window, plans, skippedDays, false)
			e.mu.Unlock()
		}
	}

	return e.Refresh(ctx)
}

// Refresh fetches the authoritative window and replaces local state.
// Returns nil without fetching while a skip mutation is in flight, and
// discards the result when a newer refresh has superseded this one.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	if e.skipInFlight {
		e.mu.Unlock()
		return nil
	}
	e.fetchSeq++
	seq := e.fetchSeq
	if e.fetchCancel != nil {
		e.fetchCancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	e.fetchCancel = cancel
	e.loading = true
	cursor := e.cursor
	window := calendar.ComputeWindow(cursor, e.durationLimit, e.plans)
	e.mu.Unlock()

	window, plans, skippedDays, err := e.loadWindow(fctx, cursor, window)

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.fetchSeq {
		return nil
	}
	e.loading = false
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	e.applyWindowLocked(window, plans, skippedDays, true)
	return nil
}

// Navigate moves the cursor by one window step and schedules a debounced
// refresh. A newer navigation cancels the pending one so only the final
// cursor's fetch applies.
func (e *Engine) Navigate(ctx context.Context, direction int) {
	e.mu.Lock()
	e.cursor = calendar.Step(e.cursor, e.durationLimit, e.plans, direction)
	e.scheduleRefreshLocked(ctx)
	e.mu.Unlock()
}

// Today jumps the cursor back to the current date.
func (e *Engine) Today(ctx context.Context) {
	e.mu.Lock()
	e.cursor = domain.Midnight(e.now())
	e.scheduleRefreshLocked(ctx)
	e.mu.Unlock()
}

// NavigateNow moves the cursor and refreshes synchronously. One-shot
// commands need the result before exiting; the interactive surface uses
// Navigate's debounced path instead.
func (e *Engine) NavigateNow(ctx context.Context, direction int) error {
	e.mu.Lock()
	e.cursor = calendar.Step(e.cursor, e.durationLimit, e.plans, direction)
	e.mu.Unlock()
	return e.Refresh(ctx)
}

func (e *Engine) scheduleRefreshLocked(ctx context.Context) {
	if e.navCancel != nil {
		e.navCancel()
	}
	e.navCancel = e.schedule(navigationDebounce, func() {
		if err := e.Refresh(ctx); err != nil {
			e.logf("navigation refresh failed: %v", err)
		}
	})
}

// loadWindow performs the fetch sequence for a window: plans (with the
// broadened fallback when the aligned fetch is empty), the skipped-day
// side table, and the best-effort enrichment pass.
func (e *Engine) loadWindow(ctx context.Context, cursor time.Time, window domain.CalendarWindow) (domain.CalendarWindow, []domain.Plan, []string, error) {
	plans, err := e.gw.FetchPlans(ctx, window.StartDate, window.EndDate(), true)
	if err != nil {
		return window, nil, nil, err
	}

	if transform.TotalDays(plans) == 0 {
		broadened := calendar.BroadenedWindow(cursor)
		widened, err := e.gw.FetchPlans(ctx, broadened.StartDate, broadened.EndDate(), true)
		if err == nil && transform.TotalDays(widened) > 0 {
			window = broadened
			plans = widened
		} else if err != nil {
			e.logf("broadened fetch failed: %v", err)
		}
	}

	skippedDays, err := e.gw.FetchSkippedDays(ctx, window.StartDate, window.EndDate())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return window, nil, nil, err
		}
		e.logf("skipped-day fetch failed: %v", err)
	}

	plans = e.enrich(ctx, plans)
	return window, plans, skippedDays, nil
}

// enrich batch-fetches summaries for slots carrying only a recipe id.
// Failures leave the slots unenriched; the calendar still renders.
func (e *Engine) enrich(ctx context.Context, plans []domain.Plan) []domain.Plan {
	missing := transform.MissingRecipeIDs(plans)
	if len(missing) == 0 {
		return plans
	}
	recipes, err := e.gw.FetchRecipes(ctx, missing)
	if err != nil {
		e.logf("recipe enrichment failed: %v", err)
		return plans
	}
	return transform.MergeRecipes(plans, recipes)
}

// applyWindowLocked replaces the window state. The skipped set is rebuilt
// from the side table plus any slot whose consolidated status is skipped.
func (e *Engine) applyWindowLocked(window domain.CalendarWindow, plans []domain.Plan, skippedDays []string, persist bool) {
	e.window = window
	e.plans = plans
	e.index = transform.Consolidate(plans)
	e.skipped = domain.NewSkippedDaySet(skippedDays...)
	for _, key := range transform.SkippedDatesFromIndex(e.index) {
		e.skipped.Add(key)
	}
	if persist && e.store != nil {
		if err := e.store.Save(context.Background(), domain.DateKey(window.StartDate), plans, e.skipped.Sorted()); err != nil {
			e.logf("snapshot save failed: %v", err)
		}
	}
}

// scheduleReconciliation queues the staged background fetches that absorb
// backend-side enrichment after a mutation. Their failures are logged and
// swallowed; the optimistic state already satisfies the UI.
func (e *Engine) scheduleReconciliation(ctx context.Context) {
	for _, delay := range reconciliationDelays {
		e.schedule(delay, func() {
			if err := e.Refresh(ctx); err != nil {
				e.logf("reconciliation fetch failed: %v", err)
			}
		})
	}
}

// snapshot captures the full mutable state before an optimistic update.
// Rollback restores everything at once; partial diffs invite
// partially-applied rollback bugs.
type snapshot struct {
	plans   []domain.Plan
	index   domain.DayIndex
	skipped domain.SkippedDaySet
}

func (e *Engine) snapshotLocked() snapshot {
	return snapshot{
		plans:   clonePlans(e.plans),
		index:   e.index.Clone(),
		skipped: e.skipped.Clone(),
	}
}

func (e *Engine) restoreLocked(s snapshot) {
	e.plans = s.plans
	e.index = s.index
	e.skipped = s.skipped
}

func clonePlans(plans []domain.Plan) []domain.Plan {
	out := make([]domain.Plan, len(plans))
	for i, p := range plans {
		np := p
		np.Days = make([]domain.MealSlot, len(p.Days))
		copy(np.Days, p.Days)
		out[i] = np
	}
	return out
}

func (e *Engine) logf(format string, args ...any) {
	ts := e.now().UTC().Format(time.RFC3339)
	fmt.Fprintf(e.logw, "[%s] engine %s\n", ts, fmt.Sprintf(format, args...))
}
