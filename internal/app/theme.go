package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// ScribeTheme keeps the chrome dim around the photograph and the form text
// large enough to proofread weathered inscriptions against.
type ScribeTheme struct{}

var _ fyne.Theme = (*ScribeTheme)(nil)

var (
	burgundy   = color.NRGBA{R: 0x80, G: 0x00, B: 0x20, A: 0xFF}
	slate      = color.NRGBA{R: 0x22, G: 0x24, B: 0x28, A: 0xFF}
	slateInput = color.NRGBA{R: 0x2E, G: 0x31, B: 0x36, A: 0xFF}
	parchment  = color.NRGBA{R: 0xF4, G: 0xEF, B: 0xE4, A: 0xFF}
	overlayHue = color.NRGBA{R: 0x00, G: 0xFF, B: 0xFF, A: 0x60}
)

func (t *ScribeTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return burgundy
	case theme.ColorNameSelection:
		// same hue as the canvas selection
		return overlayHue
	case theme.ColorNameBackground:
		if variant == theme.VariantLight {
			return parchment
		}
		return slate
	case theme.ColorNameInputBackground:
		if variant == theme.VariantLight {
			return color.White
		}
		return slateInput
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *ScribeTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *ScribeTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *ScribeTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 15
	case theme.SizeNameInputBorder:
		return 2
	case theme.SizeNameScrollBar:
		return 16 // the navigator list gets long
	case theme.SizeNameScrollBarSmall:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
