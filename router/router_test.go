package router

import "testing"

func TestAcquireReleaseRestoresPrevious(t *testing.T) {
	if Current() != nil {
		t.Fatalf("expected no instance installed at test start, got %v", Current())
	}

	g1 := Acquire("first")
	if Current() != "first" {
		t.Fatalf("expected 'first', got %v", Current())
	}

	g2 := Acquire("second")
	if Current() != "second" {
		t.Fatalf("expected 'second', got %v", Current())
	}

	g2.Release()
	if Current() != "first" {
		t.Fatalf("after releasing g2, expected 'first', got %v", Current())
	}

	g1.Release()
	if Current() != nil {
		t.Fatalf("after releasing g1, expected nil, got %v", Current())
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	g := Acquire("x")
	g.Release()
	g.Release() // must not panic or corrupt state
	if Current() != nil {
		t.Fatalf("expected nil after release, got %v", Current())
	}
}

func TestReleaseSurvivesPanic(t *testing.T) {
	func() {
		g := Acquire("outer")
		defer g.Release()

		func() {
			defer func() {
				recover()
			}()
			inner := Acquire("inner")
			defer inner.Release()
			panic("boom")
		}()

		if Current() != "outer" {
			t.Fatalf("expected 'outer' to be restored after recovered panic, got %v", Current())
		}
	}()

	if Current() != nil {
		t.Fatalf("expected nil after outer release, got %v", Current())
	}
}

func TestNilGuardReleaseIsNoop(t *testing.T) {
	var g *Guard
	g.Release() // must not panic
}
