// Package api implements the HTTP client for the meal-plan backend gateway.
// The gateway fronts the persistence layer and the external generation
// service; this client only knows the wire contracts, never the recipe
// selection algorithm behind them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/mkowalczyk/platecal/internal/transform"
)

// GenerateRequest is the body submitted to the generation endpoint.
type GenerateRequest struct {
	UserID      string   `json:"userId"`
	StartDate   string   `json:"startDate"`
	Duration    int      `json:"duration"`
	SkippedDays []string `json:"skippedDays"`
	Overwrite   bool     `json:"overwrite"`
	MealsPerDay int      `json:"mealsPerDay"`
}

// Subscription is the tier info the gateway reports for the session.
type Subscription struct {
	Tier          domain.SubscriptionTier `json:"tier"`
	DurationLimit int                     `json:"mealPlanDurationLimit"`
}

// FreezerItem is the best-effort freezer inventory entry created when a
// meal transitions to frozen.
type FreezerItem struct {
	RecipeID     string `json:"recipeId"`
	Quantity     int    `json:"quantity"`
	DateFrozen   string `json:"dateFrozen"`
	MealPlanDate string `json:"mealPlanDate"`
	Notes        string `json:"notes"`
}

// Client talks to the backend gateway over HTTP.
type Client struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a gateway client. A nil observer disables call events.
func NewClient(cfg Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// FetchPlans retrieves and normalizes the plans covering the inclusive
// date range.
func (c *Client) FetchPlans(ctx context.Context, start, end time.Time, includeRecipes bool) ([]domain.Plan, error) {
	q := url.Values{}
	q.Set("startDate", domain.DateKey(start))
	q.Set("endDate", domain.DateKey(end))
	q.Set("includeRecipes", fmt.Sprintf("%t", includeRecipes))

	body, err := c.do(ctx, OpFetchPlans, http.MethodGet, "/meal-plans?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	plans, err := transform.Normalize(body)
	if err != nil {
		return nil, fmt.Errorf("normalizing plans: %w", err)
	}
	return plans, nil
}

// Generate submits a generation request and normalizes whatever plan shape
// the gateway responds with. The response is provisionally authoritative;
// the caller installs it optimistically.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) ([]domain.Plan, error) {
	body, err := c.do(ctx, OpGenerate, http.MethodPost, "/meal-plans/generate", req)
	if err != nil {
		return nil, err
	}
	plans, err := transform.NormalizeRaw(transform.ExtractPlans(body))
	if err != nil {
		return nil, fmt.Errorf("normalizing generated plan: %w", err)
	}
	return plans, nil
}

// UpdateDayStatus patches one day's status, addressed by plan id and day
// index.
func (c *Client) UpdateDayStatus(ctx context.Context, planID string, dayIndex int, recipeID string, status domain.MealStatus) error {
	path := fmt.Sprintf("/meal-plans/%s/days/%d", planID, dayIndex)
	payload := map[string]any{
		"recipeId": recipeID,
		"status":   status,
	}
	_, err := c.do(ctx, OpUpdateStatus, http.MethodPatch, path, payload)
	return err
}

// SkipPlanDay toggles the skip state of a day inside an existing plan.
func (c *Client) SkipPlanDay(ctx context.Context, planID string, dayIndex int, skip bool) error {
	action := "unskip"
	if skip {
		action = "skip"
	}
	path := fmt.Sprintf("/meal-plans/%s/days/%d/%s", planID, dayIndex, action)
	payload := map[string]any{"userId": c.cfg.UserID}
	_, err := c.do(ctx, OpSkipDay, http.MethodPost, path, payload)
	return err
}

// SkipDate marks a date skipped when no generated plan covers it yet.
func (c *Client) SkipDate(ctx context.Context, dateKey string) error {
	payload := map[string]any{"date": dateKey}
	_, err := c.do(ctx, OpSkipDate, http.MethodPost, "/meal-plans/skip-date", payload)
	return err
}

// UnskipDate clears the date-addressed skip entry.
func (c *Client) UnskipDate(ctx context.Context, dateKey string) error {
	q := url.Values{}
	q.Set("date", dateKey)
	_, err := c.do(ctx, OpSkipDate, http.MethodDelete, "/meal-plans/skip-date?"+q.Encode(), nil)
	return err
}

// DeletePlan removes a plan entirely.
func (c *Client) DeletePlan(ctx context.Context, planID string) error {
	_, err := c.do(ctx, OpDeletePlan, http.MethodDelete, "/meal-plans/"+planID, nil)
	return err
}

// FetchRecipes batch-loads recipe summaries for the given id set.
func (c *Client) FetchRecipes(ctx context.Context, recipeIDs []string) (map[string]*domain.RecipeSummary, error) {
	payload := map[string]any{"recipeIds": recipeIDs}
	body, err := c.do(ctx, OpFetchRecipes, http.MethodPost, "/recipes", payload)
	if err != nil {
		return nil, err
	}

	var raws []struct {
		MongoID     string `json:"_id"`
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		MealType    string `json:"mealType"`
		ImageURL    string `json:"imageUrl"`
		Images      struct {
			Main string `json:"main"`
		} `json:"images"`
		PrepTime int `json:"prepTime"`
		CookTime int `json:"cookTime"`
		Servings int `json:"servings"`
	}
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("decoding recipes: %w", err)
	}

	out := make(map[string]*domain.RecipeSummary, len(raws))
	for _, r := range raws {
		id := r.ID
		if id == "" {
			id = r.MongoID
		}
		if id == "" {
			continue
		}
		img := r.Images.Main
		if img == "" {
			img = r.ImageURL
		}
		title := r.Title
		if title == "" {
			title = "Untitled Recipe"
		}
		out[id] = &domain.RecipeSummary{
			ID:          id,
			Title:       title,
			Description: r.Description,
			MealType:    domain.NormalizeMealType(r.MealType),
			ImageURL:    img,
			PrepTime:    r.PrepTime,
			CookTime:    r.CookTime,
			Servings:    r.Servings,
		}
	}
	return out, nil
}

// FetchSkippedDays lists the side-table skip entries inside the range.
func (c *Client) FetchSkippedDays(ctx context.Context, start, end time.Time) ([]string, error) {
	q := url.Values{}
	q.Set("startDate", domain.DateKey(start))
	q.Set("endDate", domain.DateKey(end))

	body, err := c.do(ctx, OpFetchSkipped, http.MethodGet, "/skipped-days?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var entries []struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decoding skipped days: %w", err)
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		d, err := transform.ParseLocalDate(e.Date)
		if err != nil {
			continue
		}
		out = append(out, domain.DateKey(d))
	}
	return out, nil
}

// FetchSubscription reads the session's tier and duration limit. A
// configured override short-circuits the call for offline use.
func (c *Client) FetchSubscription(ctx context.Context) (*Subscription, error) {
	if c.cfg.TierLimitOverride != 0 {
		tier := domain.TierPlus
		if c.cfg.TierLimitOverride > 0 && c.cfg.TierLimitOverride <= 7 {
			tier = domain.TierStarter
		}
		return &Subscription{Tier: tier, DurationLimit: c.cfg.TierLimitOverride}, nil
	}

	body, err := c.do(ctx, OpSubscription, http.MethodGet, "/subscription", nil)
	if err != nil {
		return nil, err
	}
	var sub Subscription
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("decoding subscription: %w", err)
	}
	if sub.Tier == "" {
		sub.Tier = domain.TierFree
	}
	return &sub, nil
}

// AddFreezerItem records a frozen meal in the freezer inventory.
func (c *Client) AddFreezerItem(ctx context.Context, item FreezerItem) error {
	_, err := c.do(ctx, OpFreezerAdd, http.MethodPost, "/freezer/inventory", item)
	return err
}

// do executes one gateway request, classifies failures, and reports a call
// event. Mutating calls carry a generated request id for idempotent replay
// on the gateway side.
func (c *Client) do(ctx context.Context, op Operation, method, path string, payload any) ([]byte, error) {
	start := time.Now()

	timeout := time.Duration(c.cfg.TimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	if method != http.MethodGet {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		classified := classifyTransport(ctx, err)
		c.emit(op, 0, start, classified)
		return nil, classified
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		wrapped := fmt.Errorf("reading response: %w", err)
		c.emit(op, resp.StatusCode, start, wrapped)
		return nil, wrapped
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb) // tolerate non-JSON error bodies
		classified := classifyStatus(resp.StatusCode, eb)
		c.emit(op, resp.StatusCode, start, classified)
		return nil, classified
	}

	c.emit(op, resp.StatusCode, start, nil)
	return respBody, nil
}

func (c *Client) emit(op Operation, status int, start time.Time, err error) {
	c.observer.OnCallComplete(CallEvent{
		Op:        op,
		Status:    status,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}

// classifyTransport maps transport-level failures onto the taxonomy.
// Caller-driven cancellation (navigation superseding a fetch, unmount) is
// passed through untouched so stale responses are discarded silently.
func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return context.Canceled
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("gateway request failed: %w", err)
}
