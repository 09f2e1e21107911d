package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHexColor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "already normalized", input: "#E26C2D", expected: "#E26C2D"},
		{name: "lowercase", input: "#e26c2d", expected: "#E26C2D"},
		{name: "no hash", input: "49b64e", expected: "#49B64E"},
		{name: "short form", input: "#abc", expected: "#AABBCC"},
		{name: "surrounding whitespace", input: " #8775d2 ", expected: "#8775D2"},
		{name: "invalid characters", input: "#GGGGGG", wantErr: true},
		{name: "wrong length", input: "#12345", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeHexColor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
