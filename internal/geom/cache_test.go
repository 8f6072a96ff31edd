package geom

import (
	"errors"
	"testing"
)

func TestPathCacheReusesSampledPaths(t *testing.T) {
	cache, err := NewPathCache(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	circle := Circle{Center: Pt(100, 100), Radius: 50}
	first, err := cache.Sample(circle, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cache.Sample(circle, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if &first[0] != &second[0] {
		t.Fatalf("expected the cached slice to be shared")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}
}

func TestPathCacheSeparatesCountAndShape(t *testing.T) {
	cache, err := NewPathCache(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	circle := Circle{Center: Pt(0, 0), Radius: 10}
	if _, err := cache.Sample(circle, 16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Sample(circle, 32); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Same field values under a different kind must not collide.
	oval := Oval{Center: Pt(0, 0), Width: 16, Height: 16}
	rect := Rectangle{Center: Pt(0, 0), Width: 16, Height: 16}
	ovalPts, err := cache.Sample(oval, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rectPts, err := cache.Sample(rect, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", cache.Len())
	}
	if ovalPts[4] == rectPts[4] {
		t.Fatalf("expected distinct oval and rectangle paths")
	}
}

func TestPathCachePropagatesValidation(t *testing.T) {
	cache, err := NewPathCache(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Sample(Circle{Radius: -1}, 16); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("expected ErrInvalidShape, got %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected no entries after a failed sample, got %d", cache.Len())
	}
}
