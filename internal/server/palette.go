package server

import (
	"crypto/sha256"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const paletteSize = 5

// cannedAnalysis is the deterministic result the stub returns for a host.
type cannedAnalysis struct {
	Palette   []string
	Contrast  float64
	Harmony   float64
	BestTrait string
	Analysis  string
}

// analyzeHost derives a stable palette from the host name and scores it.
func analyzeHost(host string) cannedAnalysis {
	sum := sha256.Sum256([]byte(strings.ToLower(host)))

	palette := make([]string, 0, paletteSize)
	for i := range paletteSize {
		palette = append(palette, fmt.Sprintf("#%02x%02x%02x", sum[i*3], sum[i*3+1], sum[i*3+2]))
	}

	contrast := round2(maxContrast(palette))
	harmony := round2(hueHarmony(palette))

	var trait string
	switch {
	case contrast >= 7:
		trait = "High contrast"
	case harmony >= 0.6:
		trait = "Harmonious palette"
	default:
		trait = "Vibrant variety"
	}

	analysis := fmt.Sprintf(
		"%s uses %d dominant colors. The strongest pairing reaches a contrast ratio of %.2f:1 and the hues score %.2f for harmony.",
		host, len(palette), contrast, harmony)

	return cannedAnalysis{
		Palette:   palette,
		Contrast:  contrast,
		Harmony:   harmony,
		BestTrait: trait,
		Analysis:  analysis,
	}
}

// parseHex reads #rrggbb into 0-1 channel values.
func parseHex(color string) (r, g, b float64, ok bool) {
	color = strings.TrimPrefix(color, "#")
	if len(color) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(color, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return float64(v>>16&0xff) / 255, float64(v>>8&0xff) / 255, float64(v&0xff) / 255, true
}

// luminance is the WCAG relative luminance of a color.
func luminance(color string) float64 {
	r, g, b, ok := parseHex(color)
	if !ok {
		return 0
	}
	linear := func(c float64) float64 {
		if c <= 0.03928 {
			return c / 12.92
		}
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	return 0.2126*linear(r) + 0.7152*linear(g) + 0.0722*linear(b)
}

// contrastRatio is the WCAG contrast ratio between two colors, from 1 to 21.
func contrastRatio(a, b string) float64 {
	la, lb := luminance(a), luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

func maxContrast(palette []string) float64 {
	best := 1.0
	for i := range palette {
		for j := i + 1; j < len(palette); j++ {
			best = max(best, contrastRatio(palette[i], palette[j]))
		}
	}
	return best
}

// hue returns the HSL hue of a color in degrees.
func hue(color string) float64 {
	r, g, b, ok := parseHex(color)
	if !ok {
		return 0
	}
	hi, lo := max(r, g, b), min(r, g, b)
	d := hi - lo
	if d == 0 {
		return 0
	}

	var h float64
	switch hi {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h
}

// hueHarmony scores how closely the hues cluster: 1 when identical, 0 when maximally spread.
func hueHarmony(palette []string) float64 {
	if len(palette) < 2 {
		return 1
	}

	var total float64
	pairs := 0
	for i := range palette {
		for j := i + 1; j < len(palette); j++ {
			d := math.Abs(hue(palette[i]) - hue(palette[j]))
			if d > 180 {
				d = 360 - d
			}
			total += d
			pairs++
		}
	}
	return 1 - total/float64(pairs)/180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
