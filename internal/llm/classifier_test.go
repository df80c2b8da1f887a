package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/model"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	args := m.Called(ctx, prompt, systemPrompt)
	return args.String(0), args.Error(1)
}

func testProfile() model.ClientProfile {
	return model.ClientProfile{
		UserID:         "42",
		Allergies:      []string{"Oats", "Peanuts"},
		FoodAversions:  []string{"Bitter gourd"},
		DietPreference: model.DietVeg,
	}
}

func TestClassifier_Classify(t *testing.T) {
	client := &mockClient{}
	dishes := []model.EnrichedDish{
		{Name: "Masala Oats", Ingredients: []string{"oats", "onion"}},
		{Name: "Paneer Tikka"},
	}

	client.On("Analyze", mock.Anything,
		mock.MatchedBy(func(prompt string) bool {
			return prompt == "Dishes to check:\n1. Masala Oats [Ingredients: oats, onion]\n2. Paneer Tikka"
		}),
		mock.MatchedBy(func(system string) bool {
			return assert.Contains(t, system, "Allergies (Critical): Oats, Peanuts") &&
				assert.Contains(t, system, "Medical Conditions: None") &&
				assert.Contains(t, system, "Diet Preference: Veg") &&
				assert.Contains(t, system, `"allergy" | "aversion" | "diet_type_violation" | "medical_conflict"`)
		}),
	).Return(`{"conflicts":[{"dish_name":"Masala Oats","conflicting_ingredient":"oats","conflict_type":"allergy","reason":"base ingredient"}]}`, nil)

	classifier, err := NewClassifier(client, nil)
	require.NoError(t, err)

	conflicts, err := classifier.Classify(context.Background(), testProfile(), dishes)

	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Masala Oats", conflicts[0].DishName)
	assert.Equal(t, model.ConflictAllergy, conflicts[0].Type)
	client.AssertExpectations(t)
}

func TestClassifier_NoDishes(t *testing.T) {
	client := &mockClient{}
	classifier, err := NewClassifier(client, nil)
	require.NoError(t, err)

	conflicts, err := classifier.Classify(context.Background(), testProfile(), nil)

	require.NoError(t, err)
	assert.Empty(t, conflicts)
	client.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
}

func TestClassifier_Errors(t *testing.T) {
	tests := []struct {
		replyErr error
		wantErr  error
		name     string
		reply    string
	}{
		{name: "client failure", replyErr: errors.New("boom"), wantErr: common.ErrClassificationFailed},
		{name: "unknown type", reply: `[{"dish_name":"Poha","conflict_type":"taste"}]`, wantErr: common.ErrUnknownConflictType},
		{name: "not json", reply: "I cannot help", wantErr: common.ErrClassificationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{}
			client.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(tt.reply, tt.replyErr)

			classifier, err := NewClassifier(client, nil)
			require.NoError(t, err)

			_, err = classifier.Classify(context.Background(), testProfile(), []model.EnrichedDish{{Name: "Poha"}})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewClassifier_RequiresClient(t *testing.T) {
	_, err := NewClassifier(nil, nil)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}
