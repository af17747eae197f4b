package factor

import "fmt"

// VertexColorPalette is the default colormap for vertices, the Set3
// qualitative scheme.
var VertexColorPalette = []string{
	"#8DD3C7", "#FFFFB3", "#BEBADA", "#FB8072", "#80B1D3", "#FDB462",
	"#B3DE69", "#FCCDE5", "#D9D9D9", "#BC80BD", "#CCEBC5", "#FFED6F",
}

// EdgeColorPalette is the default colormap for edges.
var EdgeColorPalette = []string{
	"#8DD3C7", "#FFFFB3", "#BEBADA", "#FB8072", "#80B1D3", "#FDB462",
	"#B3DE69", "#FCCDE5", "#D9D9D9", "#BC80BD", "#CCEBC5", "#FFED6F",
}

// MarkerPalette lists the scatter marker names assigned to vertex factors.
// Used with ModeRepeatLast: once the distinctive shapes are exhausted,
// further factors share the final marker.
var MarkerPalette = []string{
	"circle", "diamond", "hex", "triangle", "square", "plus", "star",
	"circle_cross", "diamond_cross",
	"circle_dot", "hex_dot", "triangle_dot",
	"circle_x", "triangle_pin",
	"circle_y",
}

// AmiraLabelPalette returns the 256-entry label colormap matching Amira's
// label field rendering. Entry 0 is the background (black); the remaining
// entries cycle through a fixed hue walk so that neighboring labels get
// distinguishable colors.
func AmiraLabelPalette() []string {
	palette := make([]string, 256)
	palette[0] = "#000000"
	for i := 1; i < 256; i++ {
		h := float64((i*47)%360) / 360.0
		r, g, b := hsvToRGB(h, 0.75, 0.95)
		palette[i] = fmt.Sprintf("#%02X%02X%02X", r, g, b)
	}
	return palette
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}
