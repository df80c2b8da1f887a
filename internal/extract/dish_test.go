package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/plate-audit/internal/model"
)

func TestDish(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantShort string
		wantRaw   string
		wantOK    bool
	}{
		{
			name:      "name before first comma",
			line:      "Grilled Chicken, 150g, with rice",
			wantShort: "Grilled Chicken",
			wantRaw:   "Grilled Chicken, 150g, with rice",
			wantOK:    true,
		},
		{
			name:      "parenthetical aside removed",
			line:      "Masala Oats (Oats Porridge)",
			wantShort: "Masala Oats",
			wantRaw:   "Masala Oats",
			wantOK:    true,
		},
		{
			name:      "comma inside brackets does not split",
			line:      "Paneer wrap [Make a wrap, then eat], mint chutney",
			wantShort: "Paneer wrap",
			wantRaw:   "Paneer wrap , mint chutney",
			wantOK:    true,
		},
		{
			name:      "braces removed and whitespace collapsed",
			line:      "Moong   dal {yellow}   cheela",
			wantShort: "Moong dal cheela",
			wantRaw:   "Moong dal cheela",
			wantOK:    true,
		},
		{
			name:   "short name too short",
			line:   "Ok, fine then",
			wantOK: false,
		},
		{
			name:   "only an aside",
			line:   "(optional garnish)",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := Dish(tt.line, "Breakfast")
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantShort, entry.ShortName)
			assert.Equal(t, tt.wantRaw, entry.RawLine)
			assert.Equal(t, "Breakfast", entry.MealLabel)
		})
	}
}

func TestSlots_RoundTrip(t *testing.T) {
	slots := []model.MealSlot{
		{Title: "Lunch", HTML: "<h3>Lunch</h3><p>Grilled Chicken, 150g, with rice</p>"},
	}

	entries := Slots(slots)

	require.Len(t, entries, 1)
	assert.Equal(t, "Grilled Chicken", entries[0].ShortName)
	assert.Equal(t, "Lunch", entries[0].MealLabel)
}

func TestSlots_KeepsSlotOrder(t *testing.T) {
	slots := []model.MealSlot{
		{Title: "Breakfast", HTML: "<p>Masala Oats (Oats Porridge)</p>"},
		{Title: "Dinner", HTML: "<p>Paneer Tikka</p><p>Jowar roti OR Bajra roti</p>"},
		{Title: "Empty", HTML: ""},
	}

	entries := Slots(slots)

	require.Len(t, entries, 4)
	assert.Equal(t, []string{"Breakfast", "Dinner", "Dinner", "Dinner"}, []string{
		entries[0].MealLabel, entries[1].MealLabel, entries[2].MealLabel, entries[3].MealLabel,
	})
	assert.Equal(t, "Masala Oats", entries[0].ShortName)
	assert.Equal(t, "Bajra roti", entries[3].ShortName)
}

func TestUniqueNames(t *testing.T) {
	entries := []model.DishEntry{
		{ShortName: "Green Tea"},
		{ShortName: "Poha"},
		{ShortName: "green tea "},
	}

	assert.Equal(t, []string{"Green Tea", "Poha"}, UniqueNames(entries))
	assert.Empty(t, UniqueNames(nil))
}
