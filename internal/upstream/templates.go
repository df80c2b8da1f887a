package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/model"
)

// Template listing defaults.
const (
	DefaultTemplateLimit = 50
	searchTemplateLimit  = 1000
	maxTemplatePages     = 50
)

// mealField maps one template HTML field to its slot title.
type mealField struct {
	key   string
	title string
}

// mealFields is the fixed slot order of a diet template.
var mealFields = []mealField{
	{key: "on_rising", title: "On Rising"},
	{key: "breakfast", title: "Breakfast"},
	{key: "mid_morning", title: "Mid Morning"},
	{key: "pre_workout", title: "Pre Workout"},
	{key: "post_workout", title: "Post Workout"},
	{key: "pre_lunch", title: "Pre Lunch"},
	{key: "lunch", title: "Lunch"},
	{key: "post_lunch", title: "Post Lunch"},
	{key: "tea_eve", title: "Tea / Evening Snack"},
	{key: "late_eve", title: "Late Evening"},
	{key: "pre_dinner", title: "Pre Dinner"},
	{key: "dinner", title: "Dinner"},
	{key: "post_dinner", title: "Post Dinner"},
	{key: "bed_time", title: "Bed Time"},
}

// Template statuses.
const (
	TemplateReady = "READY"
	TemplateDraft = "DRAFT"
)

// TemplateQuery selects a page of templates.
type TemplateQuery struct {
	Search string
	Page   int
	Limit  int
}

// TemplatePage is one page of templates.
type TemplatePage struct {
	Templates  []model.DietTemplate `json:"templates"`
	TotalPages int                  `json:"total_pages"`
}

// FetchTemplates lists diet templates. A search fetches a large page and
// filters by name locally because the service does not reliably apply it.
func (c *Client) FetchTemplates(ctx context.Context, q TemplateQuery) (TemplatePage, error) {
	if c.cfg.TemplateURL == "" {
		return TemplatePage{}, fmt.Errorf("%w: upstream.template_url", common.ErrMissingConfig)
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultTemplateLimit
	}
	search := strings.TrimSpace(q.Search)
	limit := q.Limit
	if search != "" {
		limit = searchTemplateLimit
	}

	endpoint, err := url.Parse(c.cfg.TemplateURL)
	if err != nil {
		return TemplatePage{}, fmt.Errorf("%w: upstream.template_url: %v", common.ErrInvalidConfig, err)
	}
	query := endpoint.Query()
	query.Set("search", search)
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(limit))
	endpoint.RawQuery = query.Encode()

	var payload any
	if err := c.do(ctx, http.MethodGet, endpoint.String(), c.cfg.TemplateSource, nil, &payload); err != nil {
		return TemplatePage{}, err
	}

	items, totalPages := templateItems(payload)
	page := TemplatePage{
		Templates:  make([]model.DietTemplate, 0, len(items)),
		TotalPages: totalPages,
	}

	needle := strings.ToLower(search)
	for _, item := range items {
		raw := asObject(item)
		if raw == nil {
			continue
		}
		tmpl := mapTemplate(raw)
		if needle != "" && !strings.Contains(strings.ToLower(tmpl.Name), needle) {
			continue
		}
		page.Templates = append(page.Templates, tmpl)
	}
	if search != "" {
		page.TotalPages = 1
	}

	c.logger.Debug("templates fetched",
		"page", q.Page,
		"count", len(page.Templates),
		"total_pages", page.TotalPages)

	return page, nil
}

// FindTemplate pages through the template list until it finds id.
func (c *Client) FindTemplate(ctx context.Context, id string) (model.DietTemplate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.DietTemplate{}, common.NewValidationError("templateId", fmt.Errorf("template ID is required"))
	}

	for pageNum := 1; pageNum <= maxTemplatePages; pageNum++ {
		page, err := c.FetchTemplates(ctx, TemplateQuery{Page: pageNum, Limit: DefaultTemplateLimit})
		if err != nil {
			return model.DietTemplate{}, err
		}
		for _, tmpl := range page.Templates {
			if tmpl.ID == id {
				return tmpl, nil
			}
		}
		if len(page.Templates) == 0 || pageNum >= page.TotalPages {
			break
		}
	}

	return model.DietTemplate{}, common.NewUserError(fmt.Sprintf("template %s not found", id), nil)
}

// templateItems accepts [{data:{data:[...], totalPage}}], its unwrapped
// forms, and a bare list of templates.
func templateItems(payload any) ([]any, int) {
	wrapper := payload
	if list, ok := payload.([]any); ok {
		if len(list) == 0 {
			return nil, 0
		}
		first := asObject(list[0])
		if first == nil || first["data"] == nil {
			return list, 1
		}
		wrapper = first
	}

	obj := asObject(wrapper)
	if obj == nil {
		return nil, 0
	}

	switch data := obj["data"].(type) {
	case map[string]any:
		items, _ := data["data"].([]any)
		return items, int(asNumber(data["totalPage"]))
	case []any:
		return data, 1
	default:
		return nil, 0
	}
}

func mapTemplate(raw map[string]any) model.DietTemplate {
	tmpl := model.DietTemplate{
		ID:     asString(firstValue(raw, "diet_id", "id")),
		Name:   asString(firstValue(raw, "diet_name", "subject", "name")),
		Status: TemplateDraft,
		Note:   asString(raw["diet_note"]),
	}
	if tmpl.Name == "" {
		tmpl.Name = "Untitled"
	}
	if asNumber(raw["diet_status"]) == 1 {
		tmpl.Status = TemplateReady
	}
	tmpl.Slots = TemplateSlots(raw)
	return tmpl
}

// TemplateSlots turns the per-meal HTML fields into ordered slots, skipping
// empty meals.
func TemplateSlots(raw map[string]any) []model.MealSlot {
	slots := make([]model.MealSlot, 0, len(mealFields))
	for _, field := range mealFields {
		content, ok := raw[field.key].(string)
		if !ok || strings.TrimSpace(content) == "" {
			continue
		}
		slots = append(slots, model.MealSlot{Title: field.title, HTML: content})
	}
	return slots
}
