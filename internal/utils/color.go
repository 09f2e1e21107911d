package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	hexColor6 = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)
	hexColor3 = regexp.MustCompile(`^#?[0-9a-fA-F]{3}$`)
)

// NormalizeHexColor converts "#abc", "aabbcc" or "#AaBbCc" to "#AABBCC".
func NormalizeHexColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	switch {
	case hexColor6.MatchString(color):
		return "#" + strings.ToUpper(strings.TrimPrefix(color, "#")), nil
	case hexColor3.MatchString(color):
		short := strings.ToUpper(strings.TrimPrefix(color, "#"))
		var b strings.Builder
		b.WriteByte('#')
		for _, r := range short {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("invalid hex color %q", color)
	}
}
