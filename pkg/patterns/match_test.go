package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"%", "", true},
		{"%", "anything", true},
		{"%augment.login%", "augment.login.token", true},
		{"%augment.login%", "x.augment.login", true},
		{"%augment.login%", "augment.logout", false},
		{"%augment%", "Augment.state", false},
		{"augment%", "augment.usage", true},
		{"augment%", "my.augment", false},
		{"%.token", "augment.login.token", true},
		{"%.token", "augment.login.tokens", false},
		{"a_c", "abc", true},
		{"a_c", "ac", false},
		{"%login%required%", "augment.login.is.required", true},
		{"%login%required%", "required.login", false},
		{`100\%`, "100%", true},
		{`100\%`, "1000", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
		{"%ü%", "grüße", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.pattern, tt.key))
		})
	}
}
