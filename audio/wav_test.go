package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"slices"
	"testing"
)

// buildWAV constructs a minimal valid WAV file in memory.
func buildWAV(sampleRate uint32, bitsPerSample, numChannels uint16, samples []int16) []byte {
	var buf bytes.Buffer
	dataSize := uint32(len(samples) * 2)
	byteRate := sampleRate * uint32(numChannels) * uint32(bitsPerSample) / 8
	blockAlign := numChannels * bitsPerSample / 8

	// RIFF header
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))    // chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))     // PCM
	binary.Write(&buf, binary.LittleEndian, numChannels)
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, bitsPerSample)

	// data chunk
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

func TestReadWAV_Valid(t *testing.T) {
	raw := make([]int16, 100)
	for i := range raw {
		raw[i] = int16(16000 * math.Sin(2*math.Pi*440*float64(i)/8000))
	}

	samples, header, err := ReadWAV(bytes.NewReader(buildWAV(8000, 16, 1, raw)))
	if err != nil {
		t.Fatalf("ReadWAV error: %v", err)
	}
	want := WAVHeader{SampleRate: 8000, BitsPerSample: 16, NumChannels: 1, NumSamples: len(raw)}
	if header != want {
		t.Errorf("header = %+v, want %+v", header, want)
	}
	if !slices.Equal(samples, raw) {
		t.Errorf("samples differ from input")
	}
}

func TestReadWAV_SkipsOddChunk(t *testing.T) {
	raw := []int16{7, -7, 300}
	data := buildWAV(8000, 16, 1, raw)
	// insert a 3 byte LIST chunk, padded to 4, between fmt and data
	extra := []byte{'L', 'I', 'S', 'T', 3, 0, 0, 0, 'a', 'b', 'c', 0}
	fmtEnd := 12 + 8 + 16
	data = append(data[:fmtEnd:fmtEnd], append(extra, data[fmtEnd:]...)...)

	samples, _, err := ReadWAV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadWAV error: %v", err)
	}
	if !slices.Equal(samples, raw) {
		t.Errorf("samples = %v, want %v", samples, raw)
	}
}

func TestReadWAV_MissingData(t *testing.T) {
	data := buildWAV(8000, 16, 1, nil)
	data = data[:len(data)-8] // drop the data chunk header
	if _, _, err := ReadWAV(bytes.NewReader(data)); err == nil {
		t.Fatal("expected error for missing data chunk")
	}
}

func TestReadWAV_NotRIFF(t *testing.T) {
	data := []byte("NOT_RIFF_DATA_HERE_EXTRA")
	r := bytes.NewReader(data)
	_, _, err := ReadWAV(r)
	if !errors.Is(err, ErrNotWAV) {
		t.Fatalf("err = %v, want ErrNotWAV", err)
	}
}

func TestReadWAV_AnySampleRate(t *testing.T) {
	raw := []int16{1, -2, 3, -4}
	data := buildWAV(44100, 16, 1, raw)
	samples, header, err := ReadWAV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadWAV error: %v", err)
	}
	if header.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", header.SampleRate)
	}
	if len(samples) != len(raw) {
		t.Errorf("len(samples) = %d, want %d", len(samples), len(raw))
	}
}

func TestReadWAV_ZeroSampleRate(t *testing.T) {
	data := buildWAV(0, 16, 1, []int16{0, 0})
	if _, _, err := ReadWAV(bytes.NewReader(data)); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestWriteWAV_RoundTrip(t *testing.T) {
	raw := make([]int16, 160)
	for i := range raw {
		raw[i] = int16(12000 * math.Sin(2*math.Pi*1000*float64(i)/8000))
	}
	var buf bytes.Buffer
	if err := WriteWAV(&buf, raw, 8000); err != nil {
		t.Fatalf("WriteWAV error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), buildWAV(8000, 16, 1, raw)) {
		t.Error("WriteWAV output differs from reference layout")
	}
	samples, header, err := ReadWAV(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadWAV error: %v", err)
	}
	if header.SampleRate != 8000 || len(samples) != len(raw) {
		t.Fatalf("got %d samples at %d Hz", len(samples), header.SampleRate)
	}
	for i := range raw {
		if samples[i] != raw[i] {
			t.Fatalf("samples[%d] = %d, want %d", i, samples[i], raw[i])
		}
	}
}

func TestWriteWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	raw := []int16{100, -100, 200}
	if err := WriteWAVFile(path, raw, 16000); err != nil {
		t.Fatalf("WriteWAVFile error: %v", err)
	}
	samples, header, err := ReadWAVFile(path)
	if err != nil {
		t.Fatalf("ReadWAVFile error: %v", err)
	}
	if header.SampleRate != 16000 || len(samples) != 3 || samples[2] != 200 {
		t.Errorf("got %v at %d Hz", samples, header.SampleRate)
	}
}

func TestReadWAV_UnsupportedStereo(t *testing.T) {
	raw := []int16{0, 0, 0, 0}
	data := buildWAV(16000, 16, 2, raw)
	r := bytes.NewReader(data)
	_, _, err := ReadWAV(r)
	if err == nil {
		t.Fatal("expected error for stereo")
	}
}
