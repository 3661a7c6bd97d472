package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeGlob(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"storefront:cart_u1", "storefront:cart_u1"},
		{"ns:cart_u*", `ns:cart_u\*`},
		{"ns:cart_u?", `ns:cart_u\?`},
		{"ns:cart_u[1]", `ns:cart_u\[1\]`},
		{`ns:cart_\`, `ns:cart_\\`},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeGlob(tt.in))
		})
	}
}
