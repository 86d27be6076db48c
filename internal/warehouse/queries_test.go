package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sales", "`sales`"},
		{"my db", "`my db`"},
		{"a`b", "`a``b`"},
		{"x; DROP TABLE y", "`x; DROP TABLE y`"},
	}
	for _, tt := range tests {
		got, err := quoteIdent(tt.in)
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestQuoteIdent_Empty(t *testing.T) {
	_, err := quoteIdent("")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}
