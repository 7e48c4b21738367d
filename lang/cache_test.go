package lang

import (
	"strings"
	"sync"
	"testing"
)

func TestParseStringCache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	src := "let cached = 1 + 1"

	first, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatal(err)
	}

	second, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("second parse did not hit the cache")
	}

	// Options that change the result use a separate entry.
	other, err := ParseString(t.Context(), src, WithMaxDepth(7))
	if err != nil {
		t.Fatal(err)
	}

	if other == first {
		t.Error("different max depth shared a cache entry")
	}

	ClearCache()

	third, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatal(err)
	}

	if third == first {
		t.Error("ClearCache() did not drop the entry")
	}
}

func TestParseStringCacheErrors(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	_, err1 := ParseString(t.Context(), "let = 1")
	_, err2 := ParseString(t.Context(), "let = 1")

	if err1 == nil || err1 != err2 {
		t.Errorf("cached errors differ: %v, %v", err1, err2)
	}
}

func TestParseReader(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	src := "const a = 2\na * 21"

	prog, err := ParseReader(t.Context(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	v, err := Evaluate(t.Context(), prog)
	if err != nil {
		t.Fatal(err)
	}

	if !Equal(v, Number(42)) {
		t.Errorf("result = %v, want 42", v)
	}

	// The reader and string paths share the cache.
	again, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatal(err)
	}

	if again != prog {
		t.Error("ParseString() missed the entry stored by ParseReader()")
	}

	uncached, err := ParseReader(t.Context(), strings.NewReader(src), WithCache(false))
	if err != nil {
		t.Fatal(err)
	}

	if uncached == prog {
		t.Error("WithCache(false) returned the cached program")
	}
}

func TestParseStringCacheConcurrent(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const workers = 16

	var (
		wg      sync.WaitGroup
		results [workers]*Program
	)

	for i := range workers {
		wg.Go(func() {
			prog, err := ParseString(t.Context(), "{ shared: true }.shared")
			if err != nil {
				t.Error(err)

				return
			}

			results[i] = prog
		})
	}

	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d parsed its own program", i)
		}
	}
}

func BenchmarkParseString(b *testing.B) {
	src := strings.Repeat("let v = { a: 1, b: { c: 'x' } }.b.c + 'y'\n", 32)

	b.Run("cached", func(b *testing.B) {
		for b.Loop() {
			if _, err := ParseString(b.Context(), src); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("uncached", func(b *testing.B) {
		for b.Loop() {
			if _, err := ParseString(b.Context(), src, WithCache(false)); err != nil {
				b.Fatal(err)
			}
		}
	})
}
