package utils

// ColorFloat is r, g, b, a in [0,1].
type ColorFloat [4]float64

// NewColorFloatRGB8 maps 8-bit channels onto [0,1] and appends alpha.
func NewColorFloatRGB8(rgb [3]uint8, alpha float64) ColorFloat {
	return ColorFloat{float64(rgb[0]) / 255, float64(rgb[1]) / 255, float64(rgb[2]) / 255, alpha}
}

func (c ColorFloat) Float32() [4]float32 {
	return [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
}
