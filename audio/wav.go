// Package audio frames raw PCM samples into a WAV container.
package audio

import "encoding/binary"

// Capture format defaults for the browser voice client.
const (
	// DefaultSampleRate is the capture sample rate assumed when the
	// client does not supply one (16kHz).
	DefaultSampleRate = 16000

	// DefaultBitDepth is the capture bit depth (16-bit).
	DefaultBitDepth = 16

	// DefaultChannels is the capture channel count (mono).
	DefaultChannels = 1
)

// headerSize is the fixed RIFF/WAVE/fmt/data header length.
const headerSize = 44

// FrameWAV wraps little-endian PCM bytes with a WAV header so that
// speech backends can consume the audio as a self-describing file.
// The output is byte-exact: a 44-byte header followed by the payload.
// A zero-length payload still yields a structurally valid header.
func FrameWAV(pcmData []byte, sampleRate, channels, bitDepth int) []byte {
	dataLen := len(pcmData)
	byteRate := sampleRate * channels * bitDepth / 8
	blockAlign := channels * bitDepth / 8

	header := make([]byte, headerSize)

	// RIFF chunk descriptor
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen)) // File size - 8
	copy(header[8:12], "WAVE")

	// fmt sub-chunk
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)                 // Sub-chunk size (16 for PCM)
	binary.LittleEndian.PutUint16(header[20:22], 1)                  // Audio format (1 = PCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))   // Number of channels
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate)) // Sample rate
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))   // Byte rate
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign)) // Block align
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitDepth))   // Bits per sample

	// data sub-chunk
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen)) // Data size

	return append(header, pcmData...)
}

// FrameWAVDefault frames PCM captured with the default client format.
// Equivalent to FrameWAV(pcmData, 16000, 1, 16).
func FrameWAVDefault(pcmData []byte) []byte {
	return FrameWAV(pcmData, DefaultSampleRate, DefaultChannels, DefaultBitDepth)
}
