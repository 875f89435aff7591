// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package dump defines the logic for the "flvdump" tool.
//
// The tool walks an FLV file tag by tag, printing each tag's type, timestamp,
// and size, decoding any onMetaData script tag it encounters. With an output
// path, it also writes the file's seek index as a sidecar.
package dump

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gengteng/flv"
	"github.com/gengteng/flv/seekindex"
	"github.com/gengteng/flv/support/fmtutil"
	"github.com/gengteng/flv/tagstream"
	"github.com/gengteng/flv/tools"

	"github.com/spf13/pflag"
)

var (
	configPath = pflag.String("config", "", "Optional YAML configuration file.")
	verbose    = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	indexOut   = pflag.String("index-out", "", "Write the seek index to this sidecar path.")
	compFlag   = tagstream.CompressionFlag(tagstream.CompressionSnappy)
)

// Main is the main entry point.
func Main() {
	pflag.Var(&compFlag, "compression",
		fmt.Sprintf("Sidecar compression, one of: %s.", tagstream.CompressionFlagValues()))
	pflag.Parse()

	if pflag.NArg() != 1 {
		log.Fatalf("Usage: flvdump [flags] <file.flv>")
	}
	path := pflag.Arg(0)

	cfg := tools.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = tools.LoadConfig(*configPath); err != nil {
			log.Fatalf("Couldn't load config: %s", err)
		}
	}
	logger := tools.NewLogger(*verbose || cfg.Verbose)

	// An explicit flag wins over the config file.
	if !pflag.CommandLine.Changed("compression") && cfg.Compression != "" {
		if err := compFlag.Set(cfg.Compression); err != nil {
			log.Fatalf("Bad config compression: %s", err)
		}
	}

	fd, err := os.Open(path)
	if err != nil {
		log.Fatalf("Couldn't open %q: %s", path, err)
	}
	defer fd.Close()

	idx := (&seekindex.Config{Capacity: cfg.IndexCapacity}).NewIndex()
	sCfg := tagstream.SessionConfig{
		Index:  idx,
		Logger: logger,
	}
	session, err := sCfg.OpenSession(fd)
	if err != nil {
		log.Fatalf("Couldn't open stream: %s", err)
	}

	hdr := session.Header()
	fmt.Printf("%s version %d, audio=%t video=%t, data offset %d\n",
		hdr.Signature[:], hdr.Version, hdr.HasAudio(), hdr.HasVideo(), hdr.DataOffset)

	var tag flv.Tag
	tags := 0
	for {
		offset := session.Position()
		if err := session.NextTag(&tag); err != nil {
			if err == io.EOF {
				break
			}
			log.Fatalf("Decode error: %s", err)
		}
		tags++

		fmt.Printf("%12d %-11s %s %7d bytes%s\n",
			offset, tag.Header.Type, fmtutil.Milliseconds(tag.Header.Timestamp),
			tag.Header.DataSize, describeTag(&tag))

		if tag.Header.Type == flv.TagTypeScriptData {
			dumpMetaData(tag.Payload)
		}
	}

	fmt.Printf("%d tags, %d bytes, %d size mismatches, %d index entries\n",
		tags, session.Position(), session.PrevSizeMismatches(), idx.Len())

	if *indexOut != "" {
		if err := tagstream.WriteSidecar(*indexOut, idx, compFlag.Value()); err != nil {
			log.Fatalf("Couldn't write sidecar: %s", err)
		}
		logger.Infof("Wrote %d index entries to %q.", idx.Len(), *indexOut)
	}
}

func describeTag(tag *flv.Tag) string {
	switch tag.Header.Type {
	case flv.TagTypeAudio:
		ah, err := tag.AudioHeader()
		if err != nil {
			return " (unreadable audio prefix)"
		}
		return fmt.Sprintf(" %s rate=%d", ah.Format, ah.Rate)

	case flv.TagTypeVideo:
		vh, err := tag.VideoHeader()
		if err != nil {
			return " (unreadable video prefix)"
		}
		return fmt.Sprintf(" %s codec=%s", vh.FrameType, vh.Codec)

	default:
		return ""
	}
}

func dumpMetaData(payload []byte) {
	md, err := flv.ParseMetaData(payload)
	if err != nil {
		fmt.Printf("    (unparsed script data: %s)\n", err)
		return
	}
	fmt.Printf("    duration=%gs %gx%g %s, %d keyframes\n",
		md.Duration, md.Width, md.Height, flv.VideoCodec(md.VideoCodecID), len(md.Keyframes))
}
