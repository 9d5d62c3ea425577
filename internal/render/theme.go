package render

import "github.com/rendis/vizor/pkg/schema"

// palettes maps each theme to its color-role values. Pure data: the
// pipeline receives the resolved palette as a one-shot snapshot at
// call time, never reads ambient style state.
var palettes = map[schema.Theme]schema.Palette{
	schema.ThemeLight: {
		Background: "#ffffff",
		Foreground: "#1f2328",
		Line:       "#59636e",
		Accent:     "#0969da",
		Muted:      "#818b98",
		Surface:    "#f6f8fa",
		Border:     "#d1d9e0",
	},
	schema.ThemeDark: {
		Background: "#0d1117",
		Foreground: "#f0f6fc",
		Line:       "#9198a1",
		Accent:     "#4493f8",
		Muted:      "#818b98",
		Surface:    "#151b23",
		Border:     "#3d444d",
	},
}

// PaletteFor resolves a theme to its palette. Unknown themes fall
// back to the light palette so every color role always has a value.
func PaletteFor(theme schema.Theme) schema.Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[schema.ThemeLight]
}
