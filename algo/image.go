package algo

// Channels is the number of interleaved channels per pixel (RGBA).
const Channels = 4

// ImageBlur applies a 3x3 mean blur to interleaved RGBA pixels. Interior
// pixels average their nine neighbours per channel, rounding down.
// Border pixels are copied from the source unchanged.
func ImageBlur(pixels []byte, width, height int) []byte {
	result := make([]byte, len(pixels))
	stride := width * Channels

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			off := y*stride + x*Channels
			for c := 0; c < Channels; c++ {
				var sum uint32
				for dy := -1; dy <= 1; dy++ {
					row := off + dy*stride + c
					sum += uint32(pixels[row-Channels]) +
						uint32(pixels[row]) +
						uint32(pixels[row+Channels])
				}
				result[off+c] = uint8(sum / 9)
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				off := y*stride + x*Channels
				copy(result[off:off+Channels], pixels[off:off+Channels])
			}
		}
	}

	return result
}
