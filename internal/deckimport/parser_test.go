package deckimport

import (
	"testing"

	"github.com/koiseka/bm-companion/internal/models"
)

func TestParseDeckList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []models.DemandEntry
	}{
		{
			name:  "quantity with x suffix",
			input: "3x Lightning Bolt",
			want:  []models.DemandEntry{{RequestedName: "Lightning Bolt", RequestedQuantity: 3}},
		},
		{
			name:  "quantity without x",
			input: "4 Counterspell",
			want:  []models.DemandEntry{{RequestedName: "Counterspell", RequestedQuantity: 4}},
		},
		{
			name:  "bare name defaults to one",
			input: "Sol Ring",
			want:  []models.DemandEntry{{RequestedName: "Sol Ring", RequestedQuantity: 1}},
		},
		{
			name:  "comments and blank lines skipped",
			input: "3x Lightning Bolt\n// sideboard\n\n1 Counterspell",
			want: []models.DemandEntry{
				{RequestedName: "Lightning Bolt", RequestedQuantity: 3},
				{RequestedName: "Counterspell", RequestedQuantity: 1},
			},
		},
		{
			name:  "zero quantity line skipped",
			input: "0 Lightning Bolt\n2 Counterspell",
			want:  []models.DemandEntry{{RequestedName: "Counterspell", RequestedQuantity: 2}},
		},
		{
			name:  "missing space after x treats line as a name",
			input: "2xLightning Bolt",
			want:  []models.DemandEntry{{RequestedName: "2xLightning Bolt", RequestedQuantity: 1}},
		},
		{
			name:  "repeated names stay separate",
			input: "2 Swamp\n3 Swamp",
			want: []models.DemandEntry{
				{RequestedName: "Swamp", RequestedQuantity: 2},
				{RequestedName: "Swamp", RequestedQuantity: 3},
			},
		},
		{
			name:  "whitespace-padded line",
			input: "  2x  Dark Ritual  ",
			want:  []models.DemandEntry{{RequestedName: "Dark Ritual", RequestedQuantity: 2}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDeckList(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseDeckList() returned %d entries, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
