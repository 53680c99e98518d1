package psd

import "fmt"

// unpackBits decodes one PackBits-compressed run into a buffer of exactly
// expected bytes. PackBits is the RLE scheme PSD uses for channel data:
// a control byte n in 0..127 is followed by n+1 literal bytes, n in 129..255
// repeats the next byte 257-n times, and 128 is a no-op.
func unpackBits(src []byte, expected int) ([]byte, error) {
	out := make([]byte, 0, expected)
	i := 0

	for i < len(src) && len(out) < expected {
		n := src[i]
		i++

		switch {
		case n < 128:
			count := int(n) + 1
			if i+count > len(src) {
				return nil, fmt.Errorf("packbits literal run of %d bytes exceeds input", count)
			}
			out = append(out, src[i:i+count]...)
			i += count
		case n > 128:
			if i >= len(src) {
				return nil, fmt.Errorf("packbits repeat run missing value byte")
			}
			count := 257 - int(n)
			v := src[i]
			i++
			for j := 0; j < count; j++ {
				out = append(out, v)
			}
		default:
			// 128 is a no-op.
		}
	}

	if len(out) < expected {
		return nil, fmt.Errorf("packbits output short: got %d bytes, expected %d", len(out), expected)
	}
	return out[:expected], nil
}
