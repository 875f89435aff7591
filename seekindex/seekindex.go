// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package seekindex maintains a bounded, rebuildable mapping from playback
// timestamps to tag boundary byte offsets.
//
// The FLV format has no native index, so random access requires one to be
// built opportunistically while tags stream past. The index is advisory: a
// lookup returns the nearest preceding indexed boundary, and the caller
// reaches the exact target by scanning forward from there. Every entry can be
// re-derived by a full forward scan, so bounding the index only trades seek
// precision for memory.
package seekindex

import (
	"container/list"
	"sort"
	"sync"

	"github.com/gengteng/flv"
)

// PrevSizeUnknown marks an entry whose previous-tag-size is not recorded.
//
// Resuming a decode at such an entry skips validation of the first
// previous-tag-size field read.
const PrevSizeUnknown = ^uint32(0)

// Entry maps a tag boundary to its byte offset.
type Entry struct {
	// Timestamp is the indexed tag's timestamp in milliseconds.
	Timestamp int32
	// Offset is the absolute byte offset of the previous-tag-size field that
	// precedes the indexed tag, so a decoder repositioned there resumes in
	// its initial state.
	Offset int64
	// PrevTagSize is the previous-tag-size value recorded at Offset, or
	// PrevSizeUnknown.
	PrevTagSize uint32
}

// Policy decides which observed tags earn index entries.
type Policy func(tag *flv.Tag) bool

// Keyframes is the default Policy: video tags whose payload prefix marks a
// keyframe.
func Keyframes(tag *flv.Tag) bool { return tag.IsKeyframe() }

// AllTags indexes every observed tag. Combined with an unbounded capacity it
// gives exact rather than approximate seeking.
func AllTags(*flv.Tag) bool { return true }

// Config configures an Index.
type Config struct {
	// Capacity bounds the number of entries held. When the bound is exceeded
	// the least-recently-looked-up entry is evicted. A value <= 0 means
	// unbounded.
	Capacity int

	// Policy selects the tags to index. If nil, Keyframes is used.
	Policy Policy
}

// NewIndex instantiates an empty Index.
func (cfg *Config) NewIndex() *Index {
	policy := cfg.Policy
	if policy == nil {
		policy = Keyframes
	}
	return &Index{
		capacity: cfg.Capacity,
		policy:   policy,
		recency:  list.New(),
	}
}

// Index is the timestamp-to-offset cache.
//
// All operations serialize on one mutex. Index operations are cheap and rare
// relative to tag decoding, so the coarse boundary costs nothing measurable
// and keeps observe, lookup and eviction trivially consistent.
type Index struct {
	mu       sync.Mutex
	capacity int
	policy   Policy

	// byTime holds the entries sorted by timestamp.
	byTime []*node
	// recency orders nodes by last lookup, most recent at the front.
	recency *list.List

	lastSeen int32
	seen     bool
}

type node struct {
	entry Entry
	elem  *list.Element
}

// Observe records a decoded tag.
//
// Tags passing the index policy insert an entry at the given boundary; all
// others only advance the last-seen timestamp. prevTagSize is the
// previous-tag-size value recorded at offset (PrevSizeUnknown if the caller
// does not know it).
func (x *Index) Observe(tag *flv.Tag, offset int64, prevTagSize uint32) {
	x.mu.Lock()
	defer x.mu.Unlock()

	ts := tag.Header.Timestamp
	if !x.seen || ts > x.lastSeen {
		x.lastSeen, x.seen = ts, true
	}

	if !x.policy(tag) {
		return
	}
	x.insertLocked(Entry{Timestamp: ts, Offset: offset, PrevTagSize: prevTagSize})
}

// FromMetaData converts an onMetaData keyframe table into index entries
// suitable for Load.
//
// Metadata file positions point at the keyframe's tag header, while entries
// point at the previous-tag-size field before it; the conversion accounts for
// that. The sizes those fields hold are not in the table, so the entries
// carry PrevSizeUnknown. Entries whose position cannot precede a size field
// are dropped.
func FromMetaData(kfs []flv.MetaKeyframe) []Entry {
	entries := make([]Entry, 0, len(kfs))
	for _, kf := range kfs {
		if kf.Position < flv.PrevTagSizeLen {
			continue
		}
		entries = append(entries, Entry{
			Timestamp:   int32(kf.Time * 1000),
			Offset:      kf.Position - flv.PrevTagSizeLen,
			PrevTagSize: PrevSizeUnknown,
		})
	}
	return entries
}

// Load bulk-inserts entries, typically recovered from a persisted snapshot or
// an onMetaData keyframe table.
func (x *Index) Load(entries []Entry) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, e := range entries {
		x.insertLocked(e)
	}
}

func (x *Index) insertLocked(e Entry) {
	// Find the insertion point. Forward scans append in timestamp order, so
	// check the tail before searching.
	i := len(x.byTime)
	if i > 0 && x.byTime[i-1].entry.Timestamp >= e.Timestamp {
		i = sort.Search(len(x.byTime), func(k int) bool {
			return x.byTime[k].entry.Timestamp >= e.Timestamp
		})
		// Duplicate timestamps keep their original entry.
		if x.byTime[i].entry.Timestamp == e.Timestamp {
			indexDuplicates.Inc()
			return
		}
	}

	n := &node{entry: e}
	n.elem = x.recency.PushFront(n)

	x.byTime = append(x.byTime, nil)
	copy(x.byTime[i+1:], x.byTime[i:])
	x.byTime[i] = n
	indexInserts.Inc()

	if x.capacity > 0 && len(x.byTime) > x.capacity {
		x.evictLocked()
	}
}

func (x *Index) evictLocked() {
	elem := x.recency.Back()
	if elem == nil {
		return
	}
	victim := x.recency.Remove(elem).(*node)

	i := sort.Search(len(x.byTime), func(k int) bool {
		return x.byTime[k].entry.Timestamp >= victim.entry.Timestamp
	})
	if i < len(x.byTime) && x.byTime[i] == victim {
		x.byTime = append(x.byTime[:i], x.byTime[i+1:]...)
	}
	indexEvictions.Inc()
}

// Lookup returns the entry with the greatest timestamp <= target.
//
// If no such entry exists, ok is false and the caller should fall back to the
// stream's data start. A successful lookup marks the entry most recently
// used.
func (x *Index) Lookup(target int32) (e Entry, ok bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	// First entry with timestamp > target; the predecessor is the answer.
	i := sort.Search(len(x.byTime), func(k int) bool {
		return x.byTime[k].entry.Timestamp > target
	})
	if i == 0 {
		indexMisses.Inc()
		return Entry{}, false
	}

	n := x.byTime[i-1]
	x.recency.MoveToFront(n.elem)
	indexHits.Inc()
	return n.entry, true
}

// Len returns the number of entries currently held.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.byTime)
}

// LastTimestamp returns the greatest timestamp observed so far, indexed or
// not, and whether any tag has been observed.
func (x *Index) LastTimestamp() (int32, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.lastSeen, x.seen
}

// Entries returns a snapshot of the current entries in timestamp order.
func (x *Index) Entries() []Entry {
	x.mu.Lock()
	defer x.mu.Unlock()

	entries := make([]Entry, len(x.byTime))
	for i, n := range x.byTime {
		entries[i] = n.entry
	}
	return entries
}
