package benchmark

import (
	"fmt"
	"testing"
	"time"

	"github.com/yndnr/sessionkit-go/internal/server/httpserver/handler"
	"github.com/yndnr/sessionkit-go/pkg/token"
)

func BenchmarkTokenNew(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		token.New()
	}
}

func BenchmarkTokenHash(b *testing.B) {
	tok := token.New()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		token.Hash(tok)
	}
}

// BenchmarkGrantsRotate measures a refresh exchange against a populated grant table.
func BenchmarkGrantsRotate(b *testing.B) {
	for _, count := range GrantCounts {
		b.Run(fmt.Sprintf("grants_%d", count), func(b *testing.B) {
			g := handler.NewGrants(time.Hour, nil)
			for i := 0; i < count; i++ {
				g.Issue(fmt.Sprintf("user-%d", i))
			}
			cur := g.Issue("bench")

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				next, _, ok := g.Rotate(cur)
				if !ok {
					b.Fatal("rotate failed")
				}
				cur = next
			}
		})
	}
}

func BenchmarkGrantsRotateParallel(b *testing.B) {
	g := handler.NewGrants(time.Hour, nil)
	for i := 0; i < 10000; i++ {
		g.Issue(fmt.Sprintf("user-%d", i))
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		cur := g.Issue("bench")
		for pb.Next() {
			next, _, ok := g.Rotate(cur)
			if !ok {
				b.Error("rotate failed")
				return
			}
			cur = next
		}
	})
}
