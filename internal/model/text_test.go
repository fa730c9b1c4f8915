package model

import "testing"

func TestFixedTextSetTruncation(t *testing.T) {
	const capacity = 8 // holds at most 7 content bytes

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"under capacity", "abc", "abc"},
		{"exactly capacity-1", "abcdefg", "abcdefg"},
		{"exactly capacity", "abcdefgh", "abcdefg"},
		{"capacity+5", "abcdefghijklm", "abcdefg"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewFixedText(capacity)
			if err != nil {
				t.Fatalf("NewFixedText failed: %v", err)
			}
			buf.Set(tt.in)
			if got := buf.String(); got != tt.want {
				t.Errorf("Set(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if buf.Cap() != capacity {
				t.Errorf("Cap() = %d, want %d", buf.Cap(), capacity)
			}
		})
	}
}

func TestFixedTextAppendTruncation(t *testing.T) {
	buf, err := NewFixedText(8)
	if err != nil {
		t.Fatalf("NewFixedText failed: %v", err)
	}

	buf.Append(" ", "lock")
	if got := buf.String(); got != "lock" {
		t.Fatalf("first append = %q, want %q (no leading separator)", got, "lock")
	}

	// 4 bytes used, 3 remain: " " fits, "rep" truncates to "re".
	buf.Append(" ", "rep")
	if got := buf.String(); got != "lock re" {
		t.Errorf("second append = %q, want %q", got, "lock re")
	}

	// Full buffer: further appends are silently dropped.
	buf.Append(" ", "repne")
	if got := buf.String(); got != "lock re" {
		t.Errorf("append past capacity = %q, want %q", got, "lock re")
	}
}

func TestFixedTextResetPreservesCapacity(t *testing.T) {
	buf, err := NewFixedText(16)
	if err != nil {
		t.Fatalf("NewFixedText failed: %v", err)
	}
	buf.Set("mov eax, ebx")
	buf.Reset()

	if buf.Len() != 0 || buf.String() != "" {
		t.Errorf("after Reset: Len=%d String=%q, want empty", buf.Len(), buf.String())
	}
	if buf.Cap() != 16 {
		t.Errorf("Cap() = %d after Reset, want 16", buf.Cap())
	}
}

func TestFixedTextInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := NewFixedText(capacity); err == nil {
			t.Errorf("NewFixedText(%d) succeeded, want error", capacity)
		}
	}
}

func TestDynamicTextGrows(t *testing.T) {
	buf := NewDynamicText()
	buf.Set("short")
	buf.Set("a considerably longer replacement string")
	if got := buf.String(); got != "a considerably longer replacement string" {
		t.Errorf("Set = %q", got)
	}

	buf.Reset()
	buf.Append(" ", "lock")
	buf.Append(" ", "rep")
	if got := buf.String(); got != "lock rep" {
		t.Errorf("Append sequence = %q, want %q", got, "lock rep")
	}
	if buf.Cap() != 0 {
		t.Errorf("dynamic Cap() = %d, want 0", buf.Cap())
	}
}

func TestAppendEmptyIsNoop(t *testing.T) {
	dyn := NewDynamicText()
	dyn.Set("x")
	dyn.Append(";", "")
	if got := dyn.String(); got != "x" {
		t.Errorf("dynamic append of empty string = %q, want %q", got, "x")
	}

	fixed, err := NewFixedText(8)
	if err != nil {
		t.Fatalf("NewFixedText failed: %v", err)
	}
	fixed.Set("x")
	fixed.Append(";", "")
	if got := fixed.String(); got != "x" {
		t.Errorf("fixed append of empty string = %q, want %q", got, "x")
	}
}
