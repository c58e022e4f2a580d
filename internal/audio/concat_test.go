package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestConcat_SingleSegmentPassthrough(t *testing.T) {
	in := []byte{0xff, 0xfb, 0x01, 0x02}
	out, err := Concat("ogg", [][]byte{in})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("single segment must pass through unchanged")
	}
}

func TestConcat_Empty(t *testing.T) {
	if _, err := Concat("mp3", nil); err == nil {
		t.Error("expected error for zero segments")
	}
}

func TestConcat_UnsupportedMultiSegmentFormat(t *testing.T) {
	if _, err := Concat("ogg", [][]byte{{1}, {2}}); err == nil {
		t.Error("expected error for multi-segment ogg")
	}
}

func id3Tag(payload int) []byte {
	tag := make([]byte, 10+payload)
	copy(tag, "ID3")
	tag[3] = 4 // v2.4
	// synchsafe size
	tag[6] = byte(payload >> 21 & 0x7f)
	tag[7] = byte(payload >> 14 & 0x7f)
	tag[8] = byte(payload >> 7 & 0x7f)
	tag[9] = byte(payload & 0x7f)
	return tag
}

func TestConcat_MP3StripsLaterID3(t *testing.T) {
	first := append(id3Tag(4), 0xff, 0xfb, 0xaa, 0xbb)
	framesOnly := []byte{0xff, 0xfb, 0xcc, 0xdd}
	second := append(id3Tag(6), framesOnly...)

	out, err := Concat("mp3", [][]byte{first, second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := append(append([]byte{}, first...), framesOnly...)
	if !bytes.Equal(out, want) {
		t.Errorf("mp3 concat mismatch:\n got %x\nwant %x", out, want)
	}
}

func TestStripID3v2_NoTag(t *testing.T) {
	in := []byte{0xff, 0xfb, 0x00}
	if got := stripID3v2(in); !bytes.Equal(got, in) {
		t.Errorf("untagged stream must be untouched")
	}
}

func wavFile(t *testing.T, pcm []byte) []byte {
	t.Helper()
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1)      // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 1)      // mono
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 24000)  // sample rate
	binary.LittleEndian.PutUint32(fmtChunk[8:12], 48000) // byte rate
	binary.LittleEndian.PutUint16(fmtChunk[12:14], 2)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 16)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(4+8+len(fmtChunk)+8+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(len(fmtChunk)))
	buf.Write(fmtChunk)
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

func TestConcat_WAVMerge(t *testing.T) {
	a := wavFile(t, []byte{1, 2, 3, 4})
	b := wavFile(t, []byte{5, 6})

	out, err := Concat("wav", [][]byte{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, err := parseWAV(out)
	if err != nil {
		t.Fatalf("merged output not parseable: %v", err)
	}
	if !bytes.Equal(w.data, []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("merged data chunk mismatch: %x", w.data)
	}
}

func TestConcat_WAVFormatMismatch(t *testing.T) {
	a := wavFile(t, []byte{1, 2})
	b := wavFile(t, []byte{3, 4})
	// Corrupt b's sample rate so formats differ.
	binary.LittleEndian.PutUint32(b[24:28], 44100)

	if _, err := Concat("wav", [][]byte{a, b}); err == nil {
		t.Error("expected error for mismatched wav formats")
	}
}

func TestConcat_WAVRejectsGarbage(t *testing.T) {
	if _, err := Concat("wav", [][]byte{{1, 2, 3}, {4, 5, 6}}); err == nil {
		t.Error("expected error for non-RIFF input")
	}
}
