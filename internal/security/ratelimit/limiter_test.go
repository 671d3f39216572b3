package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinWindow(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("fourth request should be limited")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	if !l.Allow("10.0.0.1") {
		t.Fatalf("first key should be allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatalf("second key should be unaffected")
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("first key should now be limited")
	}
}

func TestWindowSlides(t *testing.T) {
	l := NewLimiter(1, 50*time.Millisecond)
	defer l.Stop()

	if !l.Allow("10.0.0.1") {
		t.Fatalf("first request should be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("second request should be limited")
	}
	time.Sleep(60 * time.Millisecond)
	if !l.Allow("10.0.0.1") {
		t.Fatalf("request after window should be allowed")
	}
}

func TestEmptyKeyNeverLimited(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		if !l.Allow("") {
			t.Fatalf("empty key must never be limited")
		}
	}
}
