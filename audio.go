// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package flv

// SoundFormat identifies the codec of an audio payload.
type SoundFormat uint8

// Sound formats.
const (
	SoundFormatLinearPCMPlatform SoundFormat = 0
	SoundFormatADPCM             SoundFormat = 1
	SoundFormatMP3               SoundFormat = 2
	SoundFormatLinearPCMLittle   SoundFormat = 3
	SoundFormatNellymoser16      SoundFormat = 4
	SoundFormatNellymoser8       SoundFormat = 5
	SoundFormatNellymoser        SoundFormat = 6
	SoundFormatG711ALaw          SoundFormat = 7
	SoundFormatG711MuLaw         SoundFormat = 8
	SoundFormatReserved          SoundFormat = 9
	SoundFormatAAC               SoundFormat = 10
	SoundFormatSpeex             SoundFormat = 11
	SoundFormatMP38kHz           SoundFormat = 14
	SoundFormatDeviceSpecific    SoundFormat = 15
)

func (f SoundFormat) String() string {
	switch f {
	case SoundFormatLinearPCMPlatform:
		return "pcm"
	case SoundFormatADPCM:
		return "adpcm"
	case SoundFormatMP3:
		return "mp3"
	case SoundFormatLinearPCMLittle:
		return "pcm-le"
	case SoundFormatNellymoser16:
		return "nellymoser-16k"
	case SoundFormatNellymoser8:
		return "nellymoser-8k"
	case SoundFormatNellymoser:
		return "nellymoser"
	case SoundFormatG711ALaw:
		return "g711-alaw"
	case SoundFormatG711MuLaw:
		return "g711-mulaw"
	case SoundFormatReserved:
		return "reserved"
	case SoundFormatAAC:
		return "aac"
	case SoundFormatSpeex:
		return "speex"
	case SoundFormatMP38kHz:
		return "mp3-8k"
	case SoundFormatDeviceSpecific:
		return "device-specific"
	default:
		return "invalid"
	}
}

func (f SoundFormat) valid() bool {
	return f <= SoundFormatSpeex || f == SoundFormatMP38kHz || f == SoundFormatDeviceSpecific
}

// SoundRate identifies the sample rate of an audio payload.
type SoundRate uint8

// Sound rates.
const (
	SoundRate5p5kHz SoundRate = 0
	SoundRate11kHz  SoundRate = 1
	SoundRate22kHz  SoundRate = 2
	SoundRate44kHz  SoundRate = 3
)

// SoundSize identifies the sample width of an audio payload.
type SoundSize uint8

// Sound sizes.
const (
	SoundSize8Bit  SoundSize = 0
	SoundSize16Bit SoundSize = 1
)

// SoundType identifies the channel layout of an audio payload.
type SoundType uint8

// Sound types.
const (
	SoundTypeMono   SoundType = 0
	SoundTypeStereo SoundType = 1
)

// AudioDataHeader is the one-byte prefix of an audio tag payload.
type AudioDataHeader struct {
	Format SoundFormat
	Rate   SoundRate
	Size   SoundSize
	Type   SoundType
}

// ParseAudioDataHeader decodes the one-byte audio payload prefix.
func ParseAudioDataHeader(b uint8) (AudioDataHeader, error) {
	h := AudioDataHeader{
		Format: SoundFormat(b >> 4),
		Rate:   SoundRate(b >> 2 & 0x03),
		Size:   SoundSize(b >> 1 & 0x01),
		Type:   SoundType(b & 0x01),
	}
	if !h.Format.valid() {
		return AudioDataHeader{}, &FieldError{Field: "sound format", Value: uint8(h.Format)}
	}
	return h, nil
}

// Byte encodes h back into its one-byte form.
func (h AudioDataHeader) Byte() uint8 {
	return uint8(h.Format)<<4 | uint8(h.Rate)<<2 | uint8(h.Size)<<1 | uint8(h.Type)
}
