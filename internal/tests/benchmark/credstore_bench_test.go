package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/yndnr/sessionkit-go/internal/credstore"
	"github.com/yndnr/sessionkit-go/pkg/crypto/adaptive"
)

func sealedMemory(b *testing.B) *credstore.SealedBackend {
	b.Helper()
	s, err := credstore.Sealed(credstore.NewMemoryBackend(), bytes.Repeat([]byte{7}, adaptive.KeySize))
	if err != nil {
		b.Fatal(err)
	}
	return s
}

func BenchmarkSealedSave(b *testing.B) {
	ctx := context.Background()
	s := sealedMemory(b)
	value := bytes.Repeat([]byte("t"), 256)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Save(ctx, credstore.KeyAccessToken, value); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSealedLoad(b *testing.B) {
	ctx := context.Background()
	s := sealedMemory(b)
	if err := s.Save(ctx, credstore.KeyAccessToken, bytes.Repeat([]byte("t"), 256)); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Load(ctx, credstore.KeyAccessToken); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCipherSeal(b *testing.B) {
	key := bytes.Repeat([]byte{1}, adaptive.KeySize)
	msg := bytes.Repeat([]byte("m"), 1024)
	for _, typ := range []adaptive.Type{adaptive.AESGCM, adaptive.ChaCha20} {
		b.Run(typ.String(), func(b *testing.B) {
			c, err := adaptive.NewWithType(key, typ)
			if err != nil {
				b.Fatal(err)
			}
			b.SetBytes(int64(len(msg)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c.Seal(msg, nil)
			}
		})
	}
}

// BenchmarkStoreSet measures persisting a refreshed token per backend.
func BenchmarkStoreSet(b *testing.B) {
	backends := map[string]func(b *testing.B) credstore.Backend{
		"memory": func(*testing.B) credstore.Backend { return credstore.NewMemoryBackend() },
		"file": func(b *testing.B) credstore.Backend {
			f, err := credstore.NewFileBackend(filepath.Join(b.TempDir(), "credentials.json"), nil)
			if err != nil {
				b.Fatal(err)
			}
			return f
		},
	}
	for name, open := range backends {
		b.Run(name, func(b *testing.B) {
			store, err := credstore.Open(context.Background(), open(b))
			if err != nil {
				b.Fatal(err)
			}
			defer store.Close()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := store.Set(fmt.Sprintf("token-%d", i)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
