// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package flv

import (
	"math"
	"sort"

	"github.com/gengteng/flv/support/dataio"

	"github.com/pkg/errors"
)

// MetaDataName is the script data name under which encoders publish stream
// metadata.
const MetaDataName = "onMetaData"

// MetaData holds the well-known fields of an onMetaData script payload.
//
// Fields absent from the payload are left at their zero value. Unknown fields
// are ignored.
type MetaData struct {
	Duration        float64
	Width           float64
	Height          float64
	VideoDataRate   float64
	FrameRate       float64
	VideoCodecID    float64
	AudioDataRate   float64
	AudioSampleRate float64
	AudioSampleSize float64
	Stereo          bool
	AudioCodecID    float64
	Encoder         string
	FileSize        float64

	HasVideo     bool
	HasAudio     bool
	HasMetadata  bool
	HasKeyframes bool
	CanSeekToEnd bool

	LastTimestamp         float64
	LastKeyframeTimestamp float64
	LastKeyframeLocation  float64

	// Keyframes is the embedded keyframe table, sorted by time, when the
	// encoder published one.
	Keyframes []MetaKeyframe
}

// MetaKeyframe is one entry of an onMetaData keyframe table.
type MetaKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float64
	// Position is the absolute byte offset of the keyframe tag's header.
	Position int64
}

// ParseMetaData decodes an onMetaData script tag payload.
//
// The payload is an AMF0 string naming the event followed by an ECMA array
// (or object) of properties. Payloads naming a different event are rejected.
func ParseMetaData(payload []byte) (*MetaData, error) {
	r := amfReader{buf: payload}

	name, err := r.readValue()
	if err != nil {
		return nil, errors.Wrap(err, "reading script data name")
	}
	if s, ok := name.(string); !ok || s != MetaDataName {
		return nil, errors.Errorf("unexpected script data name: %v", name)
	}

	value, err := r.readValue()
	if err != nil {
		return nil, errors.Wrap(err, "reading script data value")
	}
	props, ok := value.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("script data value is not an object (%T)", value)
	}

	md := &MetaData{}
	for k, v := range props {
		switch k {
		case "duration":
			md.Duration, _ = v.(float64)
		case "width":
			md.Width, _ = v.(float64)
		case "height":
			md.Height, _ = v.(float64)
		case "videodatarate":
			md.VideoDataRate, _ = v.(float64)
		case "framerate":
			md.FrameRate, _ = v.(float64)
		case "videocodecid":
			md.VideoCodecID, _ = v.(float64)
		case "audiodatarate":
			md.AudioDataRate, _ = v.(float64)
		case "audiosamplerate":
			md.AudioSampleRate, _ = v.(float64)
		case "audiosamplesize":
			md.AudioSampleSize, _ = v.(float64)
		case "stereo":
			md.Stereo, _ = v.(bool)
		case "audiocodecid":
			md.AudioCodecID, _ = v.(float64)
		case "encoder":
			md.Encoder, _ = v.(string)
		case "filesize":
			md.FileSize, _ = v.(float64)
		case "hasVideo":
			md.HasVideo, _ = v.(bool)
		case "hasAudio":
			md.HasAudio, _ = v.(bool)
		case "hasMetadata":
			md.HasMetadata, _ = v.(bool)
		case "hasKeyframes":
			md.HasKeyframes, _ = v.(bool)
		case "canSeekToEnd":
			md.CanSeekToEnd, _ = v.(bool)
		case "lasttimestamp":
			md.LastTimestamp, _ = v.(float64)
		case "lastkeyframetimestamp":
			md.LastKeyframeTimestamp, _ = v.(float64)
		case "lastkeyframelocation":
			md.LastKeyframeLocation, _ = v.(float64)
		case "keyframes":
			md.Keyframes = parseKeyframes(v)
		}
	}
	return md, nil
}

// parseKeyframes extracts the {times, filepositions} table. Mismatched or
// missing arrays yield no keyframes rather than an error; the table is
// advisory.
func parseKeyframes(v interface{}) []MetaKeyframe {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	times, _ := obj["times"].([]interface{})
	positions, _ := obj["filepositions"].([]interface{})
	if len(times) == 0 || len(times) != len(positions) {
		return nil
	}

	kfs := make([]MetaKeyframe, 0, len(times))
	for i := range times {
		t, tok := times[i].(float64)
		p, pok := positions[i].(float64)
		if !tok || !pok {
			return nil
		}
		kfs = append(kfs, MetaKeyframe{Time: t, Position: int64(p)})
	}

	sort.Slice(kfs, func(i, j int) bool { return kfs[i].Time < kfs[j].Time })
	return kfs
}

// AMF0 type markers used by onMetaData payloads.
const (
	amf0Number      = 0x00
	amf0Boolean     = 0x01
	amf0String      = 0x02
	amf0Object      = 0x03
	amf0Null        = 0x05
	amf0Undefined   = 0x06
	amf0EcmaArray   = 0x08
	amf0ObjectEnd   = 0x09
	amf0StrictArray = 0x0A
	amf0Date        = 0x0B
	amf0LongString  = 0x0C
)

// amfReader decodes the AMF0 subset that appears in onMetaData payloads.
// Values decode as float64, bool, string, map[string]interface{},
// []interface{}, or nil.
type amfReader struct {
	buf []byte
	pos int
}

func (r *amfReader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, errors.Errorf("amf value truncated at byte %d (need %d more)", r.pos, r.pos+n-len(r.buf))
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

func (r *amfReader) readValue() (interface{}, error) {
	marker, err := r.take(1)
	if err != nil {
		return nil, err
	}

	switch marker[0] {
	case amf0Number:
		b, err := r.take(8)
		if err != nil {
			return nil, err
		}
		bits := uint64(dataio.GetUint32(b))<<32 | uint64(dataio.GetUint32(b[4:]))
		return math.Float64frombits(bits), nil

	case amf0Boolean:
		b, err := r.take(1)
		if err != nil {
			return nil, err
		}
		return b[0] != 0, nil

	case amf0String:
		return r.readShortString()

	case amf0LongString:
		b, err := r.take(4)
		if err != nil {
			return nil, err
		}
		s, err := r.take(int(dataio.GetUint32(b)))
		return string(s), err

	case amf0Object:
		return r.readProperties()

	case amf0EcmaArray:
		// The declared length is advisory; properties still end with the
		// object end marker.
		if _, err := r.take(4); err != nil {
			return nil, err
		}
		return r.readProperties()

	case amf0StrictArray:
		b, err := r.take(4)
		if err != nil {
			return nil, err
		}
		n := int(dataio.GetUint32(b))
		arr := make([]interface{}, 0, n)
		for i := 0; i < n; i++ {
			v, err := r.readValue()
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case amf0Date:
		// 8-byte epoch milliseconds plus a 2-byte timezone, decoded as a
		// plain number.
		b, err := r.take(10)
		if err != nil {
			return nil, err
		}
		bits := uint64(dataio.GetUint32(b))<<32 | uint64(dataio.GetUint32(b[4:]))
		return math.Float64frombits(bits), nil

	case amf0Null, amf0Undefined:
		return nil, nil

	default:
		return nil, errors.Errorf("unsupported amf marker 0x%02X at byte %d", marker[0], r.pos-1)
	}
}

func (r *amfReader) readShortString() (string, error) {
	b, err := r.take(2)
	if err != nil {
		return "", err
	}
	s, err := r.take(int(b[0])<<8 | int(b[1]))
	return string(s), err
}

func (r *amfReader) readProperties() (map[string]interface{}, error) {
	props := map[string]interface{}{}
	for {
		// The end of a property list is an empty key followed by the object
		// end marker.
		key, err := r.readShortString()
		if err != nil {
			return nil, err
		}
		if key == "" {
			marker, err := r.take(1)
			if err != nil {
				return nil, err
			}
			if marker[0] != amf0ObjectEnd {
				return nil, errors.Errorf("expected object end, found 0x%02X", marker[0])
			}
			return props, nil
		}

		v, err := r.readValue()
		if err != nil {
			return nil, errors.Wrapf(err, "reading property %q", key)
		}
		props[key] = v
	}
}
