package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/plate-audit/internal/model"
)

const templatesBody = `[{"status":200,"data":{"totalPage":3,"data":[
	{"diet_id":7,"diet_name":"PCOS Reset","diet_status":1,"diet_note":"Drink water",
	 "on_rising":"<p>Warm water</p>","breakfast":"<p>Masala Oats</p>","lunch":"  ","dinner":"<p>Paneer Tikka</p>","tea_eve":"<p>Green tea</p>"},
	{"id":"8","subject":"Keto Lite","diet_status":0,"breakfast":"<p>Eggs</p>"}
]}}]`

func TestFetchTemplates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultTemplateSource, r.Header.Get("Source"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(templatesBody))
	}))
	defer server.Close()

	client := NewClient(Config{TemplateURL: server.URL})
	page, err := client.FetchTemplates(context.Background(), TemplateQuery{Page: 2})

	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Templates, 2)

	first := page.Templates[0]
	assert.Equal(t, "7", first.ID)
	assert.Equal(t, "PCOS Reset", first.Name)
	assert.Equal(t, TemplateReady, first.Status)
	assert.Equal(t, "Drink water", first.Note)
	assert.Equal(t, []model.MealSlot{
		{Title: "On Rising", HTML: "<p>Warm water</p>"},
		{Title: "Breakfast", HTML: "<p>Masala Oats</p>"},
		{Title: "Tea / Evening Snack", HTML: "<p>Green tea</p>"},
		{Title: "Dinner", HTML: "<p>Paneer Tikka</p>"},
	}, first.Slots)

	second := page.Templates[1]
	assert.Equal(t, "8", second.ID)
	assert.Equal(t, "Keto Lite", second.Name)
	assert.Equal(t, TemplateDraft, second.Status)
}

func TestFetchTemplates_SearchFiltersLocally(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "keto", r.URL.Query().Get("search"))
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(templatesBody))
	}))
	defer server.Close()

	client := NewClient(Config{TemplateURL: server.URL})
	page, err := client.FetchTemplates(context.Background(), TemplateQuery{Search: " keto "})

	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Templates, 1)
	assert.Equal(t, "Keto Lite", page.Templates[0].Name)
}

func TestFindTemplate(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`{"data":{"totalPage":2,"data":[{"diet_id":1,"diet_name":"One"}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"totalPage":2,"data":[{"diet_id":2,"diet_name":"Two","lunch":"<p>Dal</p>"}]}}`))
	}))
	defer server.Close()

	client := NewClient(Config{TemplateURL: server.URL})

	tmpl, err := client.FindTemplate(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Two", tmpl.Name)
	assert.Equal(t, int32(2), calls.Load())

	_, err = client.FindTemplate(context.Background(), "9")
	assert.ErrorContains(t, err, "template 9 not found")
}

func TestTemplateItems(t *testing.T) {
	tests := []struct {
		payload   any
		name      string
		wantItems int
		wantPages int
	}{
		{
			name:      "wrapped page",
			payload:   []any{map[string]any{"data": map[string]any{"totalPage": 4.0, "data": []any{map[string]any{}}}}},
			wantItems: 1,
			wantPages: 4,
		},
		{
			name:      "data list",
			payload:   map[string]any{"data": []any{map[string]any{}, map[string]any{}}},
			wantItems: 2,
			wantPages: 1,
		},
		{
			name:      "bare list",
			payload:   []any{map[string]any{"diet_id": 1.0}},
			wantItems: 1,
			wantPages: 1,
		},
		{
			name:    "unexpected shape",
			payload: "nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, pages := templateItems(tt.payload)
			assert.Len(t, items, tt.wantItems)
			assert.Equal(t, tt.wantPages, pages)
		})
	}
}
