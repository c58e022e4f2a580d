// Package audio assembles per-segment synthesis output into one file
// per section.
//
// Concatenation policy: mp3 segments are MPEG frame streams, so the
// joined file is the frame streams back to back with ID3v2 headers
// stripped from every segment after the first; players resync on frame
// boundaries. wav segments are merged RIFF-aware: data chunks are
// combined under a single header, and all segments must share the same
// format chunk. Formats whose containers cannot be joined this way
// (ogg, webm) refuse multi-segment sections instead of writing corrupt
// output.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Concat joins ordered audio segments of the given container format.
func Concat(format string, parts [][]byte) ([]byte, error) {
	switch len(parts) {
	case 0:
		return nil, fmt.Errorf("no audio segments")
	case 1:
		return parts[0], nil
	}

	switch format {
	case "mp3":
		return concatMP3(parts), nil
	case "wav":
		return mergeWAV(parts)
	default:
		return nil, fmt.Errorf("format %q does not support multi-voice sections; use mp3 or wav", format)
	}
}

func concatMP3(parts [][]byte) []byte {
	var buf bytes.Buffer
	buf.Write(parts[0])
	for _, p := range parts[1:] {
		buf.Write(stripID3v2(p))
	}
	return buf.Bytes()
}

// stripID3v2 removes a leading ID3v2 tag so the metadata of a later
// segment does not land mid-stream.
func stripID3v2(b []byte) []byte {
	if len(b) < 10 || b[0] != 'I' || b[1] != 'D' || b[2] != '3' {
		return b
	}
	// Tag size is a 28-bit synchsafe integer, exclusive of the header.
	size := int(b[6]&0x7f)<<21 | int(b[7]&0x7f)<<14 | int(b[8]&0x7f)<<7 | int(b[9]&0x7f)
	total := 10 + size
	if b[5]&0x10 != 0 {
		total += 10 // footer present
	}
	if total >= len(b) {
		return b
	}
	return b[total:]
}

type wavChunks struct {
	format []byte // fmt chunk payload
	data   []byte // data chunk payload
}

// mergeWAV combines RIFF/WAVE segments into one file. All segments
// must carry an identical fmt chunk; the merged data chunk is the
// payloads in order under a rewritten header.
func mergeWAV(parts [][]byte) ([]byte, error) {
	var format []byte
	var data bytes.Buffer

	for i, p := range parts {
		w, err := parseWAV(p)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if format == nil {
			format = w.format
		} else if !bytes.Equal(format, w.format) {
			return nil, fmt.Errorf("segment %d: wav format differs from first segment", i)
		}
		data.Write(w.data)
	}

	var out bytes.Buffer
	riffSize := 4 + (8 + len(format)) + (8 + data.Len())
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(riffSize))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(len(format)))
	out.Write(format)
	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(data.Len()))
	out.Write(data.Bytes())
	return out.Bytes(), nil
}

func parseWAV(b []byte) (*wavChunks, error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}
	w := &wavChunks{}
	pos := 12
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		pos += 8
		if pos+size > len(b) {
			// Streaming writers sometimes leave a size of 0xFFFFFFFF
			// or short counts in the last chunk; clamp to what exists.
			size = len(b) - pos
		}
		switch id {
		case "fmt ":
			w.format = b[pos : pos+size]
		case "data":
			w.data = b[pos : pos+size]
		}
		pos += size
		if size%2 == 1 {
			pos++ // chunks are word-aligned
		}
	}
	if w.format == nil || w.data == nil {
		return nil, fmt.Errorf("missing fmt or data chunk")
	}
	return w, nil
}
