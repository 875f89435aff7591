// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package flv

// FrameType identifies the frame kind of a video payload.
type FrameType uint8

// Frame types.
const (
	FrameTypeKey              FrameType = 1
	FrameTypeInter            FrameType = 2
	FrameTypeDisposableInter  FrameType = 3
	FrameTypeGeneratedKey     FrameType = 4
	FrameTypeVideoInfoCommand FrameType = 5
)

func (t FrameType) String() string {
	switch t {
	case FrameTypeKey:
		return "keyframe"
	case FrameTypeInter:
		return "interframe"
	case FrameTypeDisposableInter:
		return "disposable-interframe"
	case FrameTypeGeneratedKey:
		return "generated-keyframe"
	case FrameTypeVideoInfoCommand:
		return "video-info"
	default:
		return "invalid"
	}
}

// VideoCodec identifies the codec of a video payload.
type VideoCodec uint8

// Video codecs.
const (
	VideoCodecJPEG            VideoCodec = 1
	VideoCodecSorensonH263    VideoCodec = 2
	VideoCodecScreenVideo     VideoCodec = 3
	VideoCodecOn2VP6          VideoCodec = 4
	VideoCodecOn2VP6Alpha     VideoCodec = 5
	VideoCodecScreenVideoV2   VideoCodec = 6
	VideoCodecAVC             VideoCodec = 7
)

func (c VideoCodec) String() string {
	switch c {
	case VideoCodecJPEG:
		return "jpeg"
	case VideoCodecSorensonH263:
		return "sorenson-h263"
	case VideoCodecScreenVideo:
		return "screen-video"
	case VideoCodecOn2VP6:
		return "vp6"
	case VideoCodecOn2VP6Alpha:
		return "vp6-alpha"
	case VideoCodecScreenVideoV2:
		return "screen-video-v2"
	case VideoCodecAVC:
		return "avc"
	default:
		return "invalid"
	}
}

// VideoDataHeader is the one-byte prefix of a video tag payload.
type VideoDataHeader struct {
	FrameType FrameType
	Codec     VideoCodec
}

// ParseVideoDataHeader decodes the one-byte video payload prefix.
func ParseVideoDataHeader(b uint8) (VideoDataHeader, error) {
	h := VideoDataHeader{
		FrameType: FrameType(b >> 4),
		Codec:     VideoCodec(b & 0x0F),
	}
	if h.FrameType < FrameTypeKey || h.FrameType > FrameTypeVideoInfoCommand {
		return VideoDataHeader{}, &FieldError{Field: "video frame type", Value: uint8(h.FrameType)}
	}
	if h.Codec < VideoCodecJPEG || h.Codec > VideoCodecAVC {
		return VideoDataHeader{}, &FieldError{Field: "video codec", Value: uint8(h.Codec)}
	}
	return h, nil
}

// Byte encodes h back into its one-byte form.
func (h VideoDataHeader) Byte() uint8 {
	return uint8(h.FrameType)<<4 | uint8(h.Codec)
}
