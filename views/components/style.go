package components

import (
	"strings"

	"github.com/a-h/templ"
)

// ColorStyle is a style declaration setting prop to a #rrggbb color.
// Anything else renders as no style.
func ColorStyle(prop, color string) templ.SafeCSS {
	if len(color) != 7 || color[0] != '#' || strings.Trim(color[1:], "0123456789abcdefABCDEF") != "" {
		return ""
	}
	return templ.SafeCSS(prop + ": " + color + ";")
}
