package tui

import "testing"

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("focus now please", 9)
	want := "focus now\nplease"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	got := wrapText("ab cdefgh", 5)
	want := "ab\ncdefg\nh"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	got := wrapText("日本語", 4)
	want := "日本\n語"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextDisabled(t *testing.T) {
	got := wrapText("one\ttwo\nthree", 0)
	if got != "one two three" {
		t.Fatalf("expected whitespace folded without wrapping, got %q", got)
	}
}
