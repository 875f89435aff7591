// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package slice defines the logic for the "flvslice" tool.
//
// The tool cuts a timestamp range out of an FLV file into a new, standalone
// FLV file. The cut starts at the nearest indexed keyframe at or before the
// range start, so the output remains decodable.
package slice

import (
	"io"
	"log"
	"os"

	"github.com/gengteng/flv"
	"github.com/gengteng/flv/seekindex"
	"github.com/gengteng/flv/tagstream"
	"github.com/gengteng/flv/tools"

	"github.com/spf13/pflag"
)

var (
	configPath = pflag.String("config", "", "Optional YAML configuration file.")
	verbose    = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	from       = pflag.Int32("from", 0, "Range start timestamp in milliseconds.")
	to         = pflag.Int32("to", 0, "Range end timestamp in milliseconds (0 means end of stream).")
	out        = pflag.StringP("out", "o", "", "Output FLV path (required).")
	rebase     = pflag.Bool("rebase", true, "Rebase output timestamps to start at zero.")
)

// Main is the main entry point.
func Main() {
	pflag.Parse()

	if pflag.NArg() != 1 || *out == "" {
		log.Fatalf("Usage: flvslice [flags] -o <out.flv> <file.flv>")
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

	// Index the source with a full scan, then rewind to the range start.
	var tag flv.Tag
	for {
		if err := session.NextTag(&tag); err != nil {
			if err == io.EOF {
				break
			}
			log.Fatalf("Decode error during scan: %s", err)
		}
	}
	entry, err := session.Seek(*from)
	if err != nil {
		log.Fatalf("Couldn't seek: %s", err)
	}
	logger.Debugf("Slicing from offset %d.", entry.Offset)

	outFile, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Couldn't create %q: %s", *out, err)
	}

	wCfg := tagstream.WriterConfig{Logger: logger}
	writer, err := wCfg.NewWriter(outFile, session.Header())
	if err != nil {
		_ = outFile.Close()
		log.Fatalf("Couldn't start output stream: %s", err)
	}

	base := int32(-1)
	for {
		if err := session.NextTag(&tag); err != nil {
			if err == io.EOF {
				break
			}
			log.Fatalf("Decode error: %s", err)
		}
		if *to > 0 && tag.Header.Timestamp >= *to {
			break
		}

		if *rebase {
			if base < 0 {
				base = tag.Header.Timestamp
			}
			tag.Header.Timestamp -= base
		}
		if _, err := writer.WriteTag(&tag); err != nil {
			log.Fatalf("Couldn't write tag: %s", err)
		}
	}

	if err := writer.Close(); err != nil {
		log.Fatalf("Couldn't finish output stream: %s", err)
	}
	logger.Infof("Wrote %d tags (%d bytes) to %q.",
		writer.NumTags(), writer.NumBytes(), *out)
}
