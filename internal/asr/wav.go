package asr

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// WAV holds a parsed PCM WAV file.
type WAV struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Data          []byte
}

// BlockAlign returns the byte size of one sample frame.
func (w *WAV) BlockAlign() int {
	return w.Channels * w.BitsPerSample / 8
}

// DurationMS returns the audio duration in milliseconds.
func (w *WAV) DurationMS() int64 {
	align := w.BlockAlign()
	if align == 0 || w.SampleRate == 0 {
		return 0
	}
	frames := int64(len(w.Data)) / int64(align)
	return frames * 1000 / int64(w.SampleRate)
}

// ReadWAV parses a RIFF/WAVE file with PCM data.
func ReadWAV(path string) (*WAV, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file: %s", path)
	}

	var w WAV
	haveFmt := false
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}
		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("truncated fmt chunk in %s", path)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported wav encoding %d (want PCM)", format)
			}
			w.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			w.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			w.BitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			w.Data = data[body : body+chunkSize]
		}
		// Chunks are word-aligned.
		offset = body + chunkSize + chunkSize%2
	}
	if !haveFmt || w.Data == nil {
		return nil, fmt.Errorf("missing fmt or data chunk in %s", path)
	}
	return &w, nil
}

// WriteWAV writes PCM data with a standard 44-byte header.
func WriteWAV(path string, sampleRate, channels, bitsPerSample int, pcm []byte) error {
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	return os.WriteFile(path, append(header, pcm...), 0o644)
}

const defaultChunkMinSeconds = 300

// Chunk is one piece of a split WAV with its position in the original
// timeline.
type Chunk struct {
	Path       string
	OffsetMS   int64
	DurationMS int64
}

// SplitWAVByDuration cuts a WAV into chunks of chunkSeconds, each starting
// overlapMS before the previous chunk ends so sentences cut at a boundary
// appear whole in the next chunk. Chunk offsets ascend from zero.
func SplitWAVByDuration(path, outDir string, chunkSeconds float64, overlapMS int) ([]Chunk, error) {
	w, err := ReadWAV(path)
	if err != nil {
		return nil, err
	}
	chunkMS := int64(chunkSeconds * 1000)
	if chunkMS <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive")
	}
	stepMS := chunkMS - int64(overlapMS)
	if stepMS <= 0 {
		return nil, fmt.Errorf("overlap %dms must be shorter than chunk %dms", overlapMS, chunkMS)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	totalMS := w.DurationMS()
	align := int64(w.BlockAlign())
	var chunks []Chunk
	for offset := int64(0); offset < totalMS || offset == 0; offset += stepMS {
		end := offset + chunkMS
		if end > totalMS {
			end = totalMS
		}
		if end <= offset {
			break
		}
		startByte := msToByte(offset, w.SampleRate, align)
		endByte := msToByte(end, w.SampleRate, align)
		if endByte > int64(len(w.Data)) {
			endByte = int64(len(w.Data))
		}
		chunkPath := filepath.Join(outDir, fmt.Sprintf("chunk_%03d.wav", len(chunks)))
		if err := WriteWAV(chunkPath, w.SampleRate, w.Channels, w.BitsPerSample, w.Data[startByte:endByte]); err != nil {
			return nil, fmt.Errorf("write chunk %d: %w", len(chunks), err)
		}
		chunks = append(chunks, Chunk{Path: chunkPath, OffsetMS: offset, DurationMS: end - offset})
		if end == totalMS {
			break
		}
	}
	return chunks, nil
}

func msToByte(ms int64, sampleRate int, align int64) int64 {
	frames := ms * int64(sampleRate) / 1000
	return frames * align
}

// ChooseRealtimeChunkSeconds picks a chunk length that yields roughly
// targetChunks pieces, clamped to the configured bounds. Long features get
// big chunks to bound request count; short ones keep chunks small enough for
// the failure-rate cascade to be meaningful.
func ChooseRealtimeChunkSeconds(durationSeconds float64, minSeconds, maxSeconds float64, targetChunks int) float64 {
	if targetChunks <= 0 {
		targetChunks = 12
	}
	if minSeconds <= 0 {
		minSeconds = defaultChunkMinSeconds
	}
	if maxSeconds < minSeconds {
		maxSeconds = minSeconds
	}
	raw := durationSeconds / float64(targetChunks)
	if raw < minSeconds {
		return minSeconds
	}
	if raw > maxSeconds {
		return maxSeconds
	}
	return raw
}
