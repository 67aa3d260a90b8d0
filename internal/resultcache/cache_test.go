package resultcache

import (
	"testing"
	"time"
)

func TestGetReturnsPutResult(t *testing.T) {
	t.Parallel()

	cache := New(8, time.Minute)
	want := Result{Text: "Chào buổi sáng", SourceLang: "en", Provider: "libretranslate"}
	cache.Put("Good morning", "vi", want)

	got, ok := cache.Get("Good morning", "vi")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got != want {
		t.Fatalf("unexpected cached result: %+v", got)
	}

	if _, ok := cache.Get("Good morning", "ja"); ok {
		t.Fatalf("different target language must miss")
	}
}

func TestKeyNormalizesWhitespaceAndCase(t *testing.T) {
	t.Parallel()

	if Key("Good  morning ", "VI") != Key("Good morning", "vi") {
		t.Fatalf("expected normalized inputs to share a key")
	}
	if Key("Good morning", "vi") == Key("Good evening", "vi") {
		t.Fatalf("distinct texts must not share a key")
	}
}

func TestTTLExpiry(t *testing.T) {
	t.Parallel()

	cache := New(8, 20*time.Millisecond)
	cache.Put("Hello", "vi", Result{Text: "Xin chào"})

	if _, ok := cache.Get("Hello", "vi"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := cache.Get("Hello", "vi"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestLRUEviction(t *testing.T) {
	t.Parallel()

	cache := New(2, time.Minute)
	cache.Put("one", "vi", Result{Text: "một"})
	cache.Put("two", "vi", Result{Text: "hai"})

	// Touch "one" so "two" becomes the eviction candidate.
	if _, ok := cache.Get("one", "vi"); !ok {
		t.Fatalf("expected hit for one")
	}

	cache.Put("three", "vi", Result{Text: "ba"})

	if _, ok := cache.Get("two", "vi"); ok {
		t.Fatalf("expected least recently used entry to be evicted")
	}
	if _, ok := cache.Get("one", "vi"); !ok {
		t.Fatalf("recently read entry must survive")
	}
	if _, ok := cache.Get("three", "vi"); !ok {
		t.Fatalf("newly written entry must be present")
	}
	if cache.Len() != 2 {
		t.Fatalf("unexpected cache length: %d", cache.Len())
	}
}

func TestNilCacheIsInert(t *testing.T) {
	t.Parallel()

	var cache *Cache
	cache.Put("x", "vi", Result{})
	if _, ok := cache.Get("x", "vi"); ok {
		t.Fatalf("nil cache must miss")
	}
	if cache.Len() != 0 {
		t.Fatalf("nil cache length must be zero")
	}
}
