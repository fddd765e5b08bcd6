package chat

import (
	"sort"

	"github.com/gookit/color"
	"github.com/samber/lo"
)

// The palette a client can pick from at handshake time. 256-color codes,
// matching what the terminal client renders.
var palette = map[string]color.Color256{
	"red":         color.C256(9),
	"orange":      color.C256(208),
	"purple":      color.C256(13),
	"green":       color.C256(10),
	"blue":        color.C256(12),
	"light-blue":  color.C256(14),
	"light-green": color.C256(120),
	"yellow":      color.C256(11),
	"pink":        color.C256(205),
	"light-pink":  color.C256(219),
	"brown":       color.C256(130),
}

func init() {
	// Rendered lines travel to remote terminals, so local tty detection
	// must not strip the escape codes.
	color.ForceOpenColor()
}

// Colorize wraps text in the named palette color. Unknown names pass the
// text through unstyled.
func Colorize(name, text string) string {
	c, ok := palette[name]
	if !ok {
		return text
	}
	return c.Sprint(text)
}

// KnownColor reports whether name is in the palette.
func KnownColor(name string) bool {
	_, ok := palette[name]
	return ok
}

// ColorNames returns the palette names in sorted order.
func ColorNames() []string {
	names := lo.Keys(palette)
	sort.Strings(names)
	return names
}
