package audio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Duration decodes an mp3 stream far enough to report its playing
// time. Used for the run report only; failures there are logged, never
// fatal.
func MP3Duration(b []byte) (time.Duration, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(b))
	if err != nil {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}
	// Output is 16-bit stereo PCM: 4 bytes per sample frame.
	frames := dec.Length() / 4
	if frames <= 0 || dec.SampleRate() <= 0 {
		return 0, fmt.Errorf("mp3 stream reports no length")
	}
	return time.Duration(frames) * time.Second / time.Duration(dec.SampleRate()), nil
}
