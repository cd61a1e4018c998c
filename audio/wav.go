// Package audio reads and writes 16-bit PCM WAV files and prepares their
// samples for the 8 kHz front end.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotWAV is returned for input without a RIFF/WAVE header.
var ErrNotWAV = errors.New("audio: not a RIFF/WAVE file")

// WAVHeader holds the parsed RIFF/WAV header fields.
type WAVHeader struct {
	SampleRate    uint32
	BitsPerSample uint16
	NumChannels   uint16
	NumSamples    int
}

type riffHeader struct {
	ID     [4]byte
	Size   uint32
	Format [4]byte
}

type chunkHeader struct {
	ID   [4]byte
	Size uint32
}

// fmtChunk is the PCM body of a "fmt " chunk.
type fmtChunk struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

const fmtChunkSize = 16

// ReadWAV reads a 16-bit PCM mono WAV file at any sample rate. Chunks
// other than "fmt " and "data" are skipped.
func ReadWAV(r io.ReadSeeker) ([]int16, WAVHeader, error) {
	var h WAVHeader
	var riff riffHeader
	if err := binary.Read(r, binary.LittleEndian, &riff); err != nil {
		return nil, h, fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	if string(riff.ID[:]) != "RIFF" || string(riff.Format[:]) != "WAVE" {
		return nil, h, ErrNotWAV
	}

	haveFmt := false
	for {
		var ch chunkHeader
		if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, h, fmt.Errorf("audio: read chunk header: %w", err)
		}

		switch string(ch.ID[:]) {
		case "fmt ":
			if ch.Size < fmtChunkSize {
				return nil, h, fmt.Errorf("audio: fmt chunk of %d bytes", ch.Size)
			}
			var f fmtChunk
			if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
				return nil, h, fmt.Errorf("audio: read fmt chunk: %w", err)
			}
			if err := checkFormat(f); err != nil {
				return nil, h, err
			}
			if err := skip(r, ch.Size-fmtChunkSize); err != nil {
				return nil, h, err
			}
			h = WAVHeader{SampleRate: f.SampleRate, BitsPerSample: f.BitsPerSample, NumChannels: f.NumChannels}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, h, errors.New("audio: data chunk before fmt chunk")
			}
			samples := make([]int16, ch.Size/2)
			if err := binary.Read(r, binary.LittleEndian, samples); err != nil {
				return nil, h, fmt.Errorf("audio: read PCM data: %w", err)
			}
			h.NumSamples = len(samples)
			return samples, h, nil

		default:
			if err := skip(r, ch.Size); err != nil {
				return nil, h, fmt.Errorf("audio: skip chunk %q: %w", ch.ID, err)
			}
		}
	}

	if !haveFmt {
		return nil, h, errors.New("audio: missing fmt chunk")
	}
	return nil, h, errors.New("audio: missing data chunk")
}

func checkFormat(f fmtChunk) error {
	switch {
	case f.AudioFormat != 1:
		return fmt.Errorf("audio: format %d is not PCM", f.AudioFormat)
	case f.NumChannels != 1:
		return fmt.Errorf("audio: %d channels, only mono is supported", f.NumChannels)
	case f.BitsPerSample != 16:
		return fmt.Errorf("audio: %d bits per sample, only 16 is supported", f.BitsPerSample)
	case f.SampleRate == 0:
		return errors.New("audio: sample rate is zero")
	}
	return nil
}

// skip moves past n bytes of chunk body plus the pad byte of odd sizes.
func skip(r io.Seeker, n uint32) error {
	off := int64(n) + int64(n&1)
	if off == 0 {
		return nil
	}
	_, err := r.Seek(off, io.SeekCurrent)
	return err
}

// ReadWAVFile is a convenience wrapper that opens a file path.
func ReadWAVFile(path string) ([]int16, WAVHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WAVHeader{}, err
	}
	defer f.Close()
	return ReadWAV(f)
}

// WriteWAV writes samples as a 16-bit PCM mono WAV file.
func WriteWAV(w io.Writer, samples []int16, sampleRate uint32) error {
	dataSize := uint32(2 * len(samples))
	parts := []any{
		riffHeader{ID: [4]byte{'R', 'I', 'F', 'F'}, Size: 36 + dataSize, Format: [4]byte{'W', 'A', 'V', 'E'}},
		chunkHeader{ID: [4]byte{'f', 'm', 't', ' '}, Size: fmtChunkSize},
		fmtChunk{
			AudioFormat:   1,
			NumChannels:   1,
			SampleRate:    sampleRate,
			ByteRate:      2 * sampleRate,
			BlockAlign:    2,
			BitsPerSample: 16,
		},
		chunkHeader{ID: [4]byte{'d', 'a', 't', 'a'}, Size: dataSize},
		samples,
	}
	for _, p := range parts {
		if err := binary.Write(w, binary.LittleEndian, p); err != nil {
			return fmt.Errorf("audio: write WAV: %w", err)
		}
	}
	return nil
}

// WriteWAVFile writes samples to path.
func WriteWAVFile(path string, samples []int16, sampleRate uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
