// Package transform normalizes the heterogeneous plan payloads returned by
// the backend into the canonical in-memory model, and consolidates them
// into the per-date Day Index. All knowledge of "what a day record looks
// like" lives here.
package transform

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkowalczyk/platecal/internal/domain"
)

// rawRecipe covers the embedded recipe object shapes. Either _id or id may
// carry the identifier; images.main takes precedence over imageUrl.
type rawRecipe struct {
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

func (r rawRecipe) id() string {
	if r.MongoID != "" {
		return r.MongoID
	}
	return r.ID
}

func (r rawRecipe) summary() *domain.RecipeSummary {
	title := r.Title
	if title == "" {
		title = "Untitled Recipe"
	}
	img := r.Images.Main
	if img == "" {
		img = r.ImageURL
	}
	return &domain.RecipeSummary{
		ID:          r.id(),
		Title:       title,
		Description: r.Description,
		MealType:    domain.NormalizeMealType(r.MealType),
		ImageURL:    img,
		PrepTime:    r.PrepTime,
		CookTime:    r.CookTime,
		Servings:    r.Servings,
	}
}

// rawDay is one day entry in any of the accepted shapes. recipeId, recipe
// and recipe_id are kept raw because each may be a string id or an embedded
// object depending on the backend path that produced the payload.
type rawDay struct {
	Date        string          `json:"date"`
	DayIndex    *int            `json:"dayIndex"`
	MealType    string          `json:"mealType"`
	Status      string          `json:"status"`
	RecipeRef   json.RawMessage `json:"recipeId"`
	Recipe      json.RawMessage `json:"recipe"`
	RecipeSnake json.RawMessage `json:"recipe_id"`
}

// rawPlan accepts the day list under days, recipeItems, or items.
type rawPlan struct {
	MongoID     string   `json:"_id"`
	ID          string   `json:"id"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Days        []rawDay `json:"days"`
	RecipeItems []rawDay `json:"recipeItems"`
	Items       []rawDay `json:"items"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func (p rawPlan) id() string {
	if p.ID != "" {
		return p.ID
	}
	return p.MongoID
}

// dayEntries applies the fixed shape precedence: days, then recipeItems,
// then items.
func (p rawPlan) dayEntries() []rawDay {
	if len(p.Days) > 0 {
		return p.Days
	}
	if len(p.RecipeItems) > 0 {
		return p.RecipeItems
	}
	return p.Items
}

// asString decodes a raw JSON value if it holds a plain string.
func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// asRecipe decodes a raw JSON value if it holds an embedded recipe object.
func asRecipe(raw json.RawMessage) (*rawRecipe, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var r rawRecipe
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false
	}
	return &r, true
}

// resolveRecipe normalizes the recipe reference across the accepted shapes,
// in precedence order: recipeId object, recipeId string, recipe string,
// recipe object, recipe_id string. An embedded object additionally yields
// an inlined summary, with the recipe field preferred over recipeId.
func resolveRecipe(d rawDay) (string, *domain.RecipeSummary) {
	refObj, refIsObj := asRecipe(d.RecipeRef)
	refStr, refIsStr := asString(d.RecipeRef)
	recObj, recIsObj := asRecipe(d.Recipe)
	recStr, recIsStr := asString(d.Recipe)
	snakeStr, _ := asString(d.RecipeSnake)

	var id string
	switch {
	case refIsObj:
		id = refObj.id()
	case refIsStr:
		id = refStr
	case recIsStr:
		id = recStr
	case recIsObj:
		id = recObj.id()
	default:
		id = snakeStr
	}

	var summary *domain.RecipeSummary
	if recIsObj {
		summary = recObj.summary()
		if summary.ID == "" {
			summary.ID = id
		}
	} else if refIsObj {
		summary = refObj.summary()
	}

	return id, summary
}

// Normalize decodes a window-fetch payload (a JSON array of plan-shaped
// objects) into canonical plans.
func Normalize(payload []byte) ([]domain.Plan, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil, fmt.Errorf("decoding plan list: %w", err)
	}
	return NormalizeRaw(raws)
}

// NormalizeRaw normalizes already-split plan payloads.
func NormalizeRaw(raws []json.RawMessage) ([]domain.Plan, error) {
	plans := make([]domain.Plan, 0, len(raws))
	for i, raw := range raws {
		var rp rawPlan
		if err := json.Unmarshal(raw, &rp); err != nil {
			return nil, fmt.Errorf("decoding plan %d: %w", i, err)
		}
		plans = append(plans, normalizePlan(rp))
	}
	return plans, nil
}

func normalizePlan(rp rawPlan) domain.Plan {
	start, err := ParseLocalDate(rp.StartDate)
	if err != nil {
		start = domain.Midnight(time.Now())
	}
	end, err := ParseLocalDate(rp.EndDate)
	if err != nil {
		end = start
	}

	plan := domain.Plan{
		ID:        rp.id(),
		StartDate: start,
		EndDate:   end,
	}
	if t, err := ParseLocalDate(rp.CreatedAt); err == nil {
		plan.CreatedAt = t
	}
	if t, err := ParseLocalDate(rp.UpdatedAt); err == nil {
		plan.UpdatedAt = t
	}

	entries := rp.dayEntries()
	plan.Days = make([]domain.MealSlot, 0, len(entries))
	for i, d := range entries {
		date, err := ParseLocalDate(d.Date)
		if err != nil {
			// No per-day date: derive from the plan start and offset.
			date = start.AddDate(0, 0, i)
		}

		idx := i
		if d.DayIndex != nil {
			idx = *d.DayIndex
		}

		recipeID, summary := resolveRecipe(d)

		plan.Days = append(plan.Days, domain.MealSlot{
			PlanID:   plan.ID,
			Date:     date,
			DayIndex: idx,
			RecipeID: recipeID,
			Recipe:   summary,
			MealType: domain.NormalizeMealType(d.MealType),
			Status:   domain.NormalizeMealStatus(d.Status),
		})
	}
	return plan
}

// ExtractPlans splits a generation response into plan payloads. The
// generation gateway has returned a bare plan, a bare array, and several
// wrapper envelopes over time; each shape is tried in a fixed order.
func ExtractPlans(payload []byte) []json.RawMessage {
	if len(payload) == 0 {
		return nil
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(payload, &arr); err == nil {
		return arr
	}

	var envelope struct {
		Data    json.RawMessage   `json:"data"`
		Plans   []json.RawMessage `json:"plans"`
		Items   []json.RawMessage `json:"items"`
		Results []json.RawMessage `json:"results"`
		Plan    json.RawMessage   `json:"plan"`
		Meal    json.RawMessage   `json:"mealPlan"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil
	}

	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &arr); err == nil {
			return arr
		}
		return []json.RawMessage{envelope.Data}
	}
	switch {
	case len(envelope.Plans) > 0:
		return envelope.Plans
	case len(envelope.Items) > 0:
		return envelope.Items
	case len(envelope.Results) > 0:
		return envelope.Results
	case len(envelope.Plan) > 0:
		return []json.RawMessage{envelope.Plan}
	case len(envelope.Meal) > 0:
		return []json.RawMessage{envelope.Meal}
	}

	// A bare plan object.
	return []json.RawMessage{json.RawMessage(payload)}
}

// TotalDays sums the day entries across plans; the window fetch uses this
// to decide whether the fallback widened fetch is needed.
func TotalDays(plans []domain.Plan) int {
	total := 0
	for _, p := range plans {
		total += len(p.Days)
	}
	return total
}
