package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/highlight"
	"github.com/Veraticus/plate-audit/internal/llm"
	"github.com/Veraticus/plate-audit/internal/model"
)

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) FetchProfile(ctx context.Context, userID string) (model.ClientProfile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.ClientProfile), args.Error(1)
}

type mockEnricher struct {
	mock.Mock
}

func (m *mockEnricher) Enrich(ctx context.Context, names []string) map[string][]string {
	args := m.Called(ctx, names)
	out, _ := args.Get(0).(map[string][]string)
	return out
}

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, profile model.ClientProfile, dishes []model.EnrichedDish) ([]model.Conflict, error) {
	args := m.Called(ctx, profile, dishes)
	out, _ := args.Get(0).([]model.Conflict)
	return out, args.Error(1)
}

func oatsProfile() model.ClientProfile {
	return model.ClientProfile{
		UserID:         "42",
		Allergies:      []string{"Oats"},
		DietPreference: model.DietVeg,
	}
}

func newTestService(p ProfileFetcher, e Enricher, c Classifier) *Service {
	svc := NewService(p, e, c, nil)
	svc.newID = func() string { return "audit-1" }
	return svc
}

func TestRun_HighlightsConflict(t *testing.T) {
	profiles := &mockProfiles{}
	enricher := &mockEnricher{}
	classifier := &mockClassifier{}

	profiles.On("FetchProfile", mock.Anything, "42").Return(oatsProfile(), nil)
	enricher.On("Enrich", mock.Anything, []string{"Masala Oats"}).
		Return(map[string][]string{"Masala Oats": {"oats", "onion"}})
	classifier.On("Classify", mock.Anything, oatsProfile(),
		[]model.EnrichedDish{{Name: "Masala Oats", Ingredients: []string{"oats", "onion"}}},
	).Return([]model.Conflict{{
		DishName:              "Masala Oats",
		ConflictingIngredient: "oats",
		Type:                  model.ConflictAllergy,
		Reason:                "oats are the base",
	}}, nil)

	svc := newTestService(profiles, enricher, classifier)
	slots := []model.MealSlot{{Title: "Breakfast", HTML: "<p>Masala Oats (Oats Porridge)</p>"}}

	result, err := svc.Run(context.Background(), Request{UserID: "42", Slots: slots})

	require.NoError(t, err)
	assert.Equal(t, "audit-1", result.AuditID)
	assert.Equal(t, 1, result.ConflictCount)
	require.Len(t, result.Slots, 1)
	assert.Equal(t, "Breakfast", result.Slots[0].Title)
	assert.Contains(t, result.Slots[0].HTML, `data-diet-flag="allergy"`)
	assert.Contains(t, result.Slots[0].HTML, `title="ALLERGY: contains oats"`)
	assert.Contains(t, result.Slots[0].HTML, "Masala Oats</span> (Oats Porridge)</p>")
	assert.Equal(t, 1, highlight.CountMarkers(result.Slots[0].HTML))
	require.Len(t, result.Traces, 1)
	assert.Equal(t, "Breakfast", result.Traces[0].Slot)

	// Input slots are left untouched.
	assert.Equal(t, "<p>Masala Oats (Oats Porridge)</p>", slots[0].HTML)

	profiles.AssertExpectations(t)
	enricher.AssertExpectations(t)
	classifier.AssertExpectations(t)
}

func TestRun_NoSlots(t *testing.T) {
	profiles := &mockProfiles{}
	classifier := &mockClassifier{}
	svc := newTestService(profiles, nil, classifier)

	result, err := svc.Run(context.Background(), Request{UserID: "42"})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ConflictCount)
	assert.Empty(t, result.Slots)
	assert.NotNil(t, result.Slots)
	classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything, mock.Anything)
	profiles.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
}

func TestRun_NoDishes(t *testing.T) {
	classifier := &mockClassifier{}
	svc := newTestService(&mockProfiles{}, nil, classifier)
	slots := []model.MealSlot{{Title: "Snack", HTML: "<p>ok</p><h3>Notes for the day</h3>"}}

	result, err := svc.Run(context.Background(), Request{UserID: "42", Slots: slots})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ConflictCount)
	assert.Equal(t, slots, result.Slots)
	classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_NoConflictsLeavesMarkupUnchanged(t *testing.T) {
	profiles := &mockProfiles{}
	classifier := &mockClassifier{}
	profiles.On("FetchProfile", mock.Anything, "42").Return(oatsProfile(), nil)
	classifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).Return([]model.Conflict{}, nil)

	svc := newTestService(profiles, nil, classifier)
	slots := []model.MealSlot{{Title: "Lunch", HTML: "<p>Paneer Tikka</p>"}}

	result, err := svc.Run(context.Background(), Request{UserID: "42", Slots: slots})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ConflictCount)
	assert.Equal(t, "<p>Paneer Tikka</p>", result.Slots[0].HTML)
	assert.Empty(t, result.Traces)
}

func TestRun_InlineProfileAndOverride(t *testing.T) {
	classifier := &mockClassifier{}
	profiles := &mockProfiles{}
	vegan := model.DietVegan

	expected := oatsProfile()
	expected.Allergies = []string{"Peanuts"}
	expected.DietPreference = model.DietVegan

	classifier.On("Classify", mock.Anything, expected, mock.Anything).Return([]model.Conflict{}, nil)

	svc := newTestService(profiles, nil, classifier)
	inline := oatsProfile()

	_, err := svc.Run(context.Background(), Request{
		Profile: &inline,
		Override: &model.ProfileOverride{
			Allergies:      []string{"Peanuts"},
			DietPreference: &vegan,
		},
		Slots: []model.MealSlot{{Title: "Lunch", HTML: "<p>Paneer Tikka</p>"}},
	})

	require.NoError(t, err)
	classifier.AssertExpectations(t)
	profiles.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
}

func TestRun_Errors(t *testing.T) {
	slots := []model.MealSlot{{Title: "Lunch", HTML: "<p>Paneer Tikka</p>"}}

	tests := []struct {
		name        string
		profileErr  error
		classifyErr error
		wantCode    string
		wantDetail  string
	}{
		{
			name:       "upstream failure",
			profileErr: &common.UpstreamError{Endpoint: "https://clients.example/api", StatusCode: 503},
			wantCode:   common.CodeAPI,
			wantDetail: "https://clients.example/api returned 503",
		},
		{
			name:       "validation failure",
			profileErr: common.NewValidationError("allergies", errors.New("unexpected object")),
			wantCode:   common.CodeValidation,
			wantDetail: "Field: allergies",
		},
		{
			name:        "classification failure",
			classifyErr: common.ErrClassificationFailed,
			wantCode:    common.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &mockProfiles{}
			classifier := &mockClassifier{}
			profiles.On("FetchProfile", mock.Anything, "42").Return(oatsProfile(), tt.profileErr)
			classifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.classifyErr)

			svc := newTestService(profiles, nil, classifier)
			result, err := svc.Run(context.Background(), Request{UserID: "42", Slots: slots})
			require.Error(t, err)

			resp := NewResponse(result, err)
			assert.False(t, resp.Success)
			assert.Nil(t, resp.Result)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, resp.Error.Details)
			}
			if tt.profileErr != nil {
				classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRun_MissingClassifier(t *testing.T) {
	profiles := &mockProfiles{}
	profiles.On("FetchProfile", mock.Anything, "42").Return(oatsProfile(), nil)
	svc := newTestService(profiles, nil, nil)

	_, err := svc.Run(context.Background(), Request{
		UserID: "42",
		Slots:  []model.MealSlot{{Title: "Lunch", HTML: "<p>Paneer Tikka</p>"}},
	})

	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestNewResponse(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		resp := NewResponse(model.AuditResult{AuditID: "a", ConflictCount: 2}, nil)
		assert.True(t, resp.Success)
		assert.Equal(t, 2, resp.ConflictCount)
		require.NotNil(t, resp.Result)
		assert.Nil(t, resp.Error)
	})

	t.Run("user error keeps friendly message", func(t *testing.T) {
		err := common.NewUserError("template 9 not found", errors.New("missing"))
		resp := NewResponse(model.AuditResult{}, err)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "template 9 not found", resp.Error.Message)
		assert.Equal(t, common.CodeInternal, resp.Error.Code)
	})
}

func TestRun_RejectedClassifierCallIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("overloaded"))
	}))
	defer server.Close()

	client, err := llm.NewClient(llm.Config{Provider: "openai", APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	classifier, err := llm.NewClassifier(client, nil)
	require.NoError(t, err)

	svc := newTestService(nil, nil, classifier)
	profile := oatsProfile()

	result, runErr := svc.Run(context.Background(), Request{
		Profile: &profile,
		Slots:   []model.MealSlot{{Title: "Breakfast", HTML: "<p>Masala Oats</p>"}},
	})
	require.Error(t, runErr)
	assert.ErrorIs(t, runErr, common.ErrClassificationFailed)

	resp := NewResponse(result, runErr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, common.CodeAPI, resp.Error.Code)
	assert.Equal(t, server.URL+"/chat/completions returned 503", resp.Error.Details)
}
