package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, nil},
		{"empty", []string{}, []string{}},
		{"dedupe preserves order", []string{"pointer", "export", "pointer"}, []string{"pointer", "export"}},
		{"trims whitespace", []string{"  pointer ", "pointer"}, []string{"pointer"}},
		{"drops empties", []string{"", "  ", "pointer"}, []string{"pointer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.in))
		})
	}
}
