package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const wavFormatPCM = 1

var ErrNotWAV = errors.New("not a RIFF/WAVE file")

// header fields of a WAV file
type WAVInfo struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	DataSize      uint32
}

// playback length derived from the data chunk size
func (w WAVInfo) Duration() time.Duration {
	bytesPerSecond := uint64(w.SampleRate) * uint64(w.Channels) * uint64(w.BitsPerSample) / 8
	if bytesPerSecond == 0 {
		return 0
	}
	return time.Duration(uint64(w.DataSize) * uint64(time.Second) / bytesPerSecond)
}

// CheckProfile reports whether the header is mono 16-bit 16 kHz PCM.
func (w WAVInfo) CheckProfile() error {
	if w.AudioFormat != wavFormatPCM {
		return fmt.Errorf("unexpected WAV format %d, want PCM", w.AudioFormat)
	}
	if w.Channels != Channels || w.SampleRate != SampleRate || w.BitsPerSample != BitsPerSample {
		return fmt.Errorf(
			"unexpected WAV profile %dch/%dHz/%dbit, want %dch/%dHz/%dbit",
			w.Channels, w.SampleRate, w.BitsPerSample,
			Channels, SampleRate, BitsPerSample,
		)
	}
	return nil
}

func ReadWAVInfoFile(path string) (WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVInfo{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	return ReadWAVInfo(f)
}

// ReadWAVInfo walks the RIFF chunks until both "fmt " and "data" are seen.
// ffmpeg may insert LIST chunks between them, which are skipped.
func ReadWAVInfo(r io.Reader) (WAVInfo, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return WAVInfo{}, ErrNotWAV
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return WAVInfo{}, ErrNotWAV
	}

	var (
		info    WAVInfo
		haveFmt bool
	)
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return WAVInfo{}, fmt.Errorf("WAV data chunk not found: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return WAVInfo{}, fmt.Errorf("WAV fmt chunk too short: %d bytes", size)
			}
			var body [16]byte
			if _, err := io.ReadFull(r, body[:]); err != nil {
				return WAVInfo{}, fmt.Errorf("failed to read WAV fmt chunk: %w", err)
			}
			info.AudioFormat = binary.LittleEndian.Uint16(body[0:2])
			info.Channels = binary.LittleEndian.Uint16(body[2:4])
			info.SampleRate = binary.LittleEndian.Uint32(body[4:8])
			info.BitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			haveFmt = true
			if err := skip(r, int64(size-16)+int64(size%2)); err != nil {
				return WAVInfo{}, err
			}
		case "data":
			if !haveFmt {
				return WAVInfo{}, errors.New("WAV data chunk precedes fmt chunk")
			}
			info.DataSize = size
			return info, nil
		default:
			if err := skip(r, int64(size)+int64(size%2)); err != nil {
				return WAVInfo{}, err
			}
		}
	}
}

func skip(r io.Reader, n int64) error {
	if n == 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return fmt.Errorf("truncated WAV chunk: %w", err)
	}
	return nil
}
