package constants

import (
	"strings"
)

type EyeColor string

const (
	Brown EyeColor = "Brown"
	Blue  EyeColor = "Blue"
	Green EyeColor = "Green"
	Hazel EyeColor = "Hazel"
	Gray  EyeColor = "Gray"
	Black EyeColor = "Black"
	Amber EyeColor = "Amber"
)

var allEyeColors = []EyeColor{
	Brown,
	Blue,
	Green,
	Hazel,
	Gray,
	Black,
	Amber,
}

// license abbreviations seen on US/Canadian cards
var eyeColorAbbreviations = map[string]EyeColor{
	"bro":  Brown,
	"brn":  Brown,
	"br":   Brown,
	"blu":  Blue,
	"bl":   Blue,
	"grn":  Green,
	"gr":   Green,
	"hzl":  Hazel,
	"haz":  Hazel,
	"gry":  Gray,
	"gray": Gray,
	"grey": Gray,
	"blk":  Black,
	"amb":  Amber,
}

// CanonicalizeEyeColor maps an abbreviation or spelled-out color to its canonical
// name. The second result is false when the input is not a known color.
func CanonicalizeEyeColor(input string) (EyeColor, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	if c, ok := eyeColorAbbreviations[normalized]; ok {
		return c, true
	}

	for _, c := range allEyeColors {
		if normalized == strings.ToLower(string(c)) {
			return c, true
		}
	}

	return "", false
}
