package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"lowercases", "JUAN PEREZ", "juan perez"},
		{"strips punctuation", "Juan Perez S.L.", "juan perez sl"},
		{"strips dashes and underscores", "B-1234_567", "b1234567"},
		{"collapses whitespace", "  Juan   Perez  ", "juan perez"},
		{"folds diacritics", "Juan Pérez", "juan perez"},
		{"folds tilde", "Peña García, S.L.", "pena garcia sl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}
