package usecase

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestQueryPreprocessor_Normalize(t *testing.T) {
	p := NewQueryPreprocessor(zerolog.Nop())

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
		{name: "lower cases", input: "Twin And Earth", want: "twin and earth"},
		{name: "keeps unit spacing", input: "2.5 mm T&E cable", want: "2.5 mm t&e cable"},
		{name: "keeps punctuation", input: "cable, (grey)!", want: "cable, (grey)!"},
		{name: "keeps short words", input: "Type A RCD", want: "type a rcd"},
		{name: "keeps hyphens and plus", input: "C-Type MCB + RCD", want: "c-type mcb + rcd"},
		{name: "composes accents", input: "Cafe\u0301 lighting", want: "caf\u00e9 lighting"},
		{name: "collapses whitespace", input: "  double \t socket  ", want: "double socket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Normalize(tt.input))
		})
	}
}

func TestQueryPreprocessor_DistinctAlternates(t *testing.T) {
	p := NewQueryPreprocessor(zerolog.Nop())

	tests := []struct {
		name       string
		original   string
		alternates []string
		max        int
		want       []string
	}{
		{
			name:       "keeps order",
			original:   "2.5mm T&E",
			alternates: []string{"twin and earth 2.5mm", "6242Y 2.5mm", "flat cable 2.5"},
			max:        3,
			want:       []string{"twin and earth 2.5mm", "6242Y 2.5mm", "flat cable 2.5"},
		},
		{
			name:       "drops phrasing equal to original",
			original:   "2.5mm T&E",
			alternates: []string{"  2.5MM t&e ", "twin and earth"},
			max:        3,
			want:       []string{"twin and earth"},
		},
		{
			name:       "keeps phrasings that differ by a short word",
			original:   "Type A RCD",
			alternates: []string{"Type RCD", "RCD Type A"},
			max:        3,
			want:       []string{"Type RCD", "RCD Type A"},
		},
		{
			name:       "drops repeats and blanks",
			original:   "mcb",
			alternates: []string{"circuit breaker", "", "Circuit Breaker", "  "},
			max:        3,
			want:       []string{"circuit breaker"},
		},
		{
			name:       "caps at max",
			original:   "rcbo",
			alternates: []string{"a1", "b1", "c1", "d1"},
			max:        2,
			want:       []string{"a1", "b1"},
		},
		{
			name:       "trims kept phrasings",
			original:   "swa",
			alternates: []string{"  armoured cable "},
			max:        3,
			want:       []string{"armoured cable"},
		},
		{
			name:       "nothing to keep",
			original:   "fcu",
			alternates: nil,
			max:        3,
			want:       nil,
		},
		{
			name:       "zero max",
			original:   "fcu",
			alternates: []string{"fused spur"},
			max:        0,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.DistinctAlternates(tt.original, tt.alternates, tt.max)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
