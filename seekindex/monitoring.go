// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package seekindex

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	indexInserts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flv_seekindex_inserts",
		Help: "Count of entries inserted into seek indexes.",
	})

	indexDuplicates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flv_seekindex_duplicates",
		Help: "Count of insertions dropped because the timestamp was already indexed.",
	})

	indexEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flv_seekindex_evictions",
		Help: "Count of entries evicted under the capacity bound.",
	})

	indexHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flv_seekindex_lookup_hits",
		Help: "Count of lookups resolved by an indexed entry.",
	})

	indexMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flv_seekindex_lookup_misses",
		Help: "Count of lookups that fell back to the stream data start.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		indexInserts,
		indexDuplicates,
		indexEvictions,
		indexHits,
		indexMisses,
	)
}
