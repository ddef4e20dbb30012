package util

import "testing"

func TestMDHashID(t *testing.T) {
	// md5("hello") = 5d41402abc4b2a76b9719d911017c592
	got := MDHashID("hello", ChunkIDPrefix)
	want := "chunk-5d41402abc4b2a76b9719d911017c592"
	if got != want {
		t.Errorf("MDHashID() = %q, want %q", got, want)
	}
}

func TestMDHashIDDeterministic(t *testing.T) {
	a := MDHashID("same content", EntityIDPrefix)
	b := MDHashID("same content", EntityIDPrefix)
	if a != b {
		t.Errorf("identical content produced different ids: %q vs %q", a, b)
	}

	c := MDHashID("other content", EntityIDPrefix)
	if a == c {
		t.Errorf("different content produced the same id: %q", a)
	}
}

func TestMDHash(t *testing.T) {
	if got := MDHash(""); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("MDHash(\"\") = %q", got)
	}
}
