package vfs

import "testing"

func TestWriteThenReadRoundTrip(t *testing.T) {
	fs := New()
	h, err := Open(fs, "f.txt", ModeWrite)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := h.Write("Hi"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	h.Close()

	if got, want := fs.files["f.txt"], "Hi"; got != want {
		t.Errorf("fs contents = %q, want %q", got, want)
	}

	h2, err := Open(fs, "f.txt", ModeRead)
	if err != nil {
		t.Fatalf("Open(read) error = %v", err)
	}
	line, err := h2.Readline()
	if err != nil {
		t.Fatalf("Readline() error = %v", err)
	}
	if line != "Hi" {
		t.Errorf("Readline() = %q, want %q", line, "Hi")
	}
}

func TestReadlineSplitsOnNewlines(t *testing.T) {
	fs := New()
	fs.Write("a.txt", "one\ntwo\nthree")
	h, _ := Open(fs, "a.txt", ModeRead)

	for _, want := range []string{"one", "two", "three", ""} {
		got, err := h.Readline()
		if err != nil {
			t.Fatalf("Readline() error = %v", err)
		}
		if got != want {
			t.Errorf("Readline() = %q, want %q", got, want)
		}
	}
}

func TestAppendConcatenates(t *testing.T) {
	fs := New()
	fs.Write("a.txt", "one\n")
	h, _ := Open(fs, "a.txt", ModeAppend)
	h.Write("two\n")
	h.Close()

	if got, want := fs.files["a.txt"], "one\ntwo\n"; got != want {
		t.Errorf("contents = %q, want %q", got, want)
	}
}

func TestOpenMissingForReadFails(t *testing.T) {
	fs := New()
	if _, err := Open(fs, "missing.txt", ModeRead); err == nil {
		t.Fatal("expected error opening missing file for read")
	}
}

func TestWriteModeRejectsRead(t *testing.T) {
	fs := New()
	h, _ := Open(fs, "a.txt", ModeWrite)
	if _, err := h.Read(); err == nil {
		t.Fatal("expected error reading a write-mode handle")
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{"r": ModeRead, "w": ModeWrite, "a": ModeAppend}
	for s, want := range tests {
		got, err := ParseMode(s)
		if err != nil {
			t.Fatalf("ParseMode(%q) error = %v", s, err)
		}
		if got != want {
			t.Errorf("ParseMode(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseMode("x"); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	fs := New()
	h, _ := Open(fs, "a.txt", ModeWrite)
	h.Write("x")
	h.Close()
	h.Close()
	if got := fs.files["a.txt"]; got != "x" {
		t.Errorf("contents = %q, want %q", got, "x")
	}
}
