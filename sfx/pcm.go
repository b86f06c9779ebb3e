package sfx

import (
	"encoding/binary"
	"math"

	"github.com/gopxl/beep"
)

const bytesPerFrame = 4

// Render drains s into 16-bit little-endian stereo PCM, the layout ebiten's
// audio players expect.
func Render(s beep.Streamer) []byte {
	buf := make([][2]float64, 512)
	var out []byte
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			out = binary.LittleEndian.AppendUint16(out, uint16(toInt16(buf[i][0])))
			out = binary.LittleEndian.AppendUint16(out, uint16(toInt16(buf[i][1])))
		}
		if !ok || n == 0 {
			return out
		}
	}
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}

// Frames is the number of stereo frames in pcm.
func Frames(pcm []byte) int {
	return len(pcm) / bytesPerFrame
}
