// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package seek defines the logic for the "flvseek" tool.
//
// The tool positions a stream at a target timestamp and prints the tags from
// the nearest preceding indexed keyframe through the target. The index comes
// from a sidecar file when one is supplied, from the stream's own onMetaData
// keyframe table when it carries one, and from a full scan otherwise.
package seek

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gengteng/flv"
	"github.com/gengteng/flv/seekindex"
	"github.com/gengteng/flv/support/fmtutil"
	"github.com/gengteng/flv/support/logging"
	"github.com/gengteng/flv/tagstream"
	"github.com/gengteng/flv/tools"

	"github.com/spf13/pflag"
)

var (
	configPath = pflag.String("config", "", "Optional YAML configuration file.")
	verbose    = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	target     = pflag.Int32("at", 0, "Target timestamp in milliseconds.")
	indexPath  = pflag.String("index", "", "Load the seek index from this sidecar path.")
)

// Main is the main entry point.
func Main() {
	pflag.Parse()

	if pflag.NArg() != 1 {
		log.Fatalf("Usage: flvseek [flags] <file.flv>")
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

	if *indexPath != "" {
		entries, err := tagstream.LoadSidecar(*indexPath)
		if err != nil {
			log.Fatalf("Couldn't load sidecar %q: %s", *indexPath, err)
		}
		idx.Load(entries)
		logger.Infof("Loaded %d index entries from %q.", len(entries), *indexPath)
	} else if entries := metadataEntries(session, logger); len(entries) > 0 {
		idx.Load(entries)
		logger.Infof("Loaded %d index entries from stream metadata.", len(entries))
	} else {
		// No sidecar and no usable metadata; build the index with a full
		// scan.
		var tag flv.Tag
		for {
			if err := session.NextTag(&tag); err != nil {
				if err == io.EOF {
					break
				}
				log.Fatalf("Decode error during scan: %s", err)
			}
		}
		logger.Infof("Indexed %d entries from a full scan.", idx.Len())
	}

	entry, err := session.Seek(*target)
	if err != nil {
		log.Fatalf("Couldn't seek: %s", err)
	}
	fmt.Printf("Resumed at offset %d (%s)\n",
		entry.Offset, fmtutil.Milliseconds(entry.Timestamp))

	var tag flv.Tag
	for {
		if err := session.NextTag(&tag); err != nil {
			if err == io.EOF {
				fmt.Printf("Reached end of stream before target.\n")
				return
			}
			log.Fatalf("Decode error: %s", err)
		}

		fmt.Printf("%-11s %s %7d bytes\n",
			tag.Header.Type, fmtutil.Milliseconds(tag.Header.Timestamp),
			tag.Header.DataSize)
		if tag.Header.Timestamp >= *target {
			return
		}
	}
}

// metadataEntries reads the stream's leading onMetaData tag, if any, and
// converts its keyframe table. The session is left positioned at the start of
// tag data.
func metadataEntries(session *tagstream.Session, logger logging.L) []seekindex.Entry {
	defer func() {
		if _, err := session.Seek(0); err != nil {
			log.Fatalf("Couldn't rewind stream: %s", err)
		}
	}()

	var tag flv.Tag
	if err := session.NextTag(&tag); err != nil || tag.Header.Type != flv.TagTypeScriptData {
		return nil
	}
	md, err := flv.ParseMetaData(tag.Payload)
	if err != nil {
		logger.Debugf("Ignoring unparsed script data: %s.", err)
		return nil
	}
	return seekindex.FromMetaData(md.Keyframes)
}
