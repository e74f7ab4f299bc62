package main

import "testing"

func TestInstanceKeyIsStablePerSocket(t *testing.T) {
	a := instanceKey("/tmp/mpvsocket")
	if a != instanceKey(" /tmp/mpvsocket ") {
		t.Fatalf("surrounding whitespace must not change the key")
	}
	if a == instanceKey("/tmp/other-socket") {
		t.Fatalf("different sockets must not share a lock")
	}
	if len(a) != 12 {
		t.Fatalf("expected 12 hex chars, got %q", a)
	}
	if instanceKey(`\\.\pipe\mpvsocket`) == instanceKey(`\\.\pipe\other`) {
		t.Fatalf("named pipes must not share a lock")
	}
}
