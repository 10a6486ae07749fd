// Package audio holds the mu-law decoder and buffering used by the optional
// Twilio Media Streams transport. Conversion logic follows the Sun
// Microsystems G.711 reference implementation.
package audio

import "encoding/binary"

var muLawToPCMTable [256]int16

func init() {
	for i := 0; i < 256; i++ {
		muLawToPCMTable[i] = decodeMuLawByte(byte(i))
	}
}

// DecodeMuLaw converts one mu-law byte to a 16-bit PCM sample.
func DecodeMuLaw(b byte) int16 {
	return muLawToPCMTable[b]
}

func decodeMuLawByte(uVal byte) int16 {
	// Mu-law stores the byte bit-inverted
	uVal = ^uVal

	sign := uVal & 0x80
	exponent := (uVal >> 4) & 0x07
	mantissa := uVal & 0x0F

	// Shift the mantissa into place, add the aligned bias (0x84), scale
	// by the exponent, then remove the bias again
	sample := int16((int32(mantissa)<<3 + 0x84) << exponent)
	sample -= 0x84

	if sign != 0 {
		return -sample
	}
	return sample
}

// MuLawToPCM16k converts mu-law 8kHz audio to 16-bit little-endian PCM at
// 16kHz, upsampling by duplicating each sample.
func MuLawToPCM16k(muLawData []byte) []byte {
	pcmData := make([]byte, len(muLawData)*4)
	for i, b := range muLawData {
		sample := uint16(muLawToPCMTable[b])
		binary.LittleEndian.PutUint16(pcmData[i*4:], sample)
		binary.LittleEndian.PutUint16(pcmData[i*4+2:], sample)
	}
	return pcmData
}
