package sim

import (
	"fmt"
	"math"
)

// bucketBounds are the upper edges of the payout-multiplier histogram.
// Losses (multiplier 0) get their own bucket; the last bucket is open.
var bucketBounds = []float64{1, 2, 5, 10, 50}

// Bucket is one cell of the payout-multiplier distribution.
type Bucket struct {
	Label string `json:"label"`
	Count uint64 `json:"count"`
}

func newBuckets() []Bucket {
	buckets := make([]Bucket, 0, len(bucketBounds)+2)
	buckets = append(buckets, Bucket{Label: "0"})
	lo := 0.0
	for _, hi := range bucketBounds {
		buckets = append(buckets, Bucket{Label: fmt.Sprintf("(%g, %g]", lo, hi)})
		lo = hi
	}
	buckets = append(buckets, Bucket{Label: fmt.Sprintf("> %g", lo)})
	return buckets
}

func bucketIndex(multiplier float64) int {
	if multiplier == 0 {
		return 0
	}
	for i, hi := range bucketBounds {
		if multiplier <= hi {
			return i + 1
		}
	}
	return len(bucketBounds) + 1
}

// batchStats accumulates one batch worth of results. Batches are merged in
// batch order so aggregate floats are deterministic for a fixed seed and
// batch count, independent of scheduling.
type batchStats struct {
	rounds   uint64
	wins     uint64
	sumMult  float64
	sumMult2 float64
	maxMult  float64
	buckets  []Bucket
}

func newBatchStats() *batchStats {
	return &batchStats{buckets: newBuckets()}
}

func (b *batchStats) record(multiplier float64, won bool) {
	b.rounds++
	if won {
		b.wins++
	}
	b.sumMult += multiplier
	b.sumMult2 += multiplier * multiplier
	if multiplier > b.maxMult {
		b.maxMult = multiplier
	}
	b.buckets[bucketIndex(multiplier)].Count++
}

func (b *batchStats) merge(o *batchStats) {
	b.rounds += o.rounds
	b.wins += o.wins
	b.sumMult += o.sumMult
	b.sumMult2 += o.sumMult2
	if o.maxMult > b.maxMult {
		b.maxMult = o.maxMult
	}
	for i := range b.buckets {
		b.buckets[i].Count += o.buckets[i].Count
	}
}

func (b *batchStats) mean() float64 {
	if b.rounds == 0 {
		return 0
	}
	return b.sumMult / float64(b.rounds)
}

func (b *batchStats) stdDev() float64 {
	if b.rounds == 0 {
		return 0
	}
	n := float64(b.rounds)
	v := b.sumMult2/n - (b.sumMult/n)*(b.sumMult/n)
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}
