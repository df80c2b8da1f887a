package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflict_Locatable(t *testing.T) {
	tests := []struct {
		name     string
		dishName string
		want     bool
	}{
		{name: "empty", dishName: "", want: false},
		{name: "single letter", dishName: "a", want: false},
		{name: "two letters", dishName: "ab", want: true},
		{name: "single multi-byte letter", dishName: "é", want: false},
		{name: "two multi-byte letters", dishName: "éé", want: true},
		{name: "single devanagari letter", dishName: "द", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Conflict{DishName: tt.dishName}.Locatable())
		})
	}
}
