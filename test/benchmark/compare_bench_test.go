package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/comparator/cache"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/config"
)

// BenchmarkCompare measures the full pipeline for every strategy and metric.
func BenchmarkCompare(b *testing.B) {
	a, c := sampleTexts["medium"], sampleTexts["long"]
	for _, s := range similarity.Strategies {
		for _, m := range similarity.Metrics {
			b.Run(fmt.Sprintf("%s/%s", s, m), func(b *testing.B) {
				b.ReportAllocs()
				for b.Loop() {
					if _, err := similarity.Compare(a, c, s, m); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkCompareParallel(b *testing.B) {
	a, c := sampleTexts["short"], sampleTexts["medium"]
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := similarity.Compare(a, c, similarity.Frequency, similarity.Cosine); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkCacheHit measures a comparison served from the local tier.
func BenchmarkCacheHit(b *testing.B) {
	c, err := cache.New(config.CacheConfig{Enabled: true, LocalSize: 128, TTL: time.Minute}, nil)
	if err != nil {
		b.Fatal(err)
	}
	req := similarity.Request{
		TextA:    sampleTexts["medium"],
		TextB:    sampleTexts["long"],
		Strategy: similarity.Frequency,
		Metric:   similarity.Cosine,
	}
	compute := func() (*similarity.Result, error) { return similarity.Analyze(req) }
	ctx := context.Background()
	if _, _, err := c.GetOrCompute(ctx, req, compute); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		if _, cached, err := c.GetOrCompute(ctx, req, compute); err != nil || !cached {
			b.Fatalf("cached=%v err=%v", cached, err)
		}
	}
}
