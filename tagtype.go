// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package flv

import (
	"fmt"
)

// TagType identifies the kind of payload a tag carries.
//
// The known values form a closed set; any other value decodes as itself so
// that streams carrying future tag types survive a round-trip. Use Known to
// distinguish the two cases.
type TagType uint8

const (
	// TagTypeAudio marks an audio tag.
	TagTypeAudio TagType = 8
	// TagTypeVideo marks a video tag.
	TagTypeVideo TagType = 9
	// TagTypeScriptData marks a script data (metadata) tag.
	TagTypeScriptData TagType = 18
)

// Known returns whether t is one of the tag types defined by the format.
func (t TagType) Known() bool {
	switch t {
	case TagTypeAudio, TagTypeVideo, TagTypeScriptData:
		return true
	default:
		return false
	}
}

func (t TagType) String() string {
	switch t {
	case TagTypeAudio:
		return "audio"
	case TagTypeVideo:
		return "video"
	case TagTypeScriptData:
		return "scriptdata"
	default:
		return fmt.Sprintf("unknown(0x%02X)", uint8(t))
	}
}
