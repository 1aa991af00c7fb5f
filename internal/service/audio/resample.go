package audio

import "encoding/binary"

// Downsample converts samples captured at nativeRate to targetRate using
// nearest-neighbor selection by a real-valued ratio, so non-integer rate
// relationships work without a power-of-two constraint.
// When the rates match, the input is returned unchanged.
func Downsample(samples []float32, nativeRate, targetRate int) []float32 {
	if nativeRate == targetRate {
		return samples
	}
	ratio := float64(nativeRate) / float64(targetRate)
	n := int(float64(len(samples)) / ratio)
	out := make([]float32, n)
	for i := range out {
		out[i] = samples[int(float64(i)*ratio)]
	}
	return out
}

// ToPCM16 clamps each sample to [-1.0, 1.0] and scales to the signed
// 16-bit range. The scale is asymmetric (0x8000 negative, 0x7FFF positive)
// to match the int16 range without overflow.
func ToPCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s < -1.0 {
			s = -1.0
		} else if s > 1.0 {
			s = 1.0
		}
		if s < 0 {
			out[i] = int16(s * 0x8000)
		} else {
			out[i] = int16(s * 0x7FFF)
		}
	}
	return out
}

// EncodePCM16LE packs PCM16 samples as little-endian bytes.
func EncodePCM16LE(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// DecodePCM16LE unpacks little-endian PCM16 bytes into float32 samples
// in [-1.0, 1.0). Odd trailing bytes are ignored.
func DecodePCM16LE(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float32(s) / 0x8000
	}
	return out
}
