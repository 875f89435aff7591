// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package tagstream

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	decoderTags = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flv_decoder_tags",
		Help: "Count of tags decoded.",
	})

	decoderBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flv_decoder_bytes",
		Help: "Count of stream bytes consumed by decoders.",
	})

	decoderPrevSizeMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flv_decoder_prev_size_mismatches",
		Help: "Count of previous-tag-size fields that disagreed with the preceding tag.",
	})

	encoderTags = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flv_encoder_tags",
		Help: "Count of tags encoded.",
	})

	encoderBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flv_encoder_bytes",
		Help: "Count of stream bytes produced by encoders.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		// Decoder
		decoderTags,
		decoderBytes,
		decoderPrevSizeMismatches,

		// Encoder
		encoderTags,
		encoderBytes,
	)
}
