// Package vfs implements the per-interpreter in-memory virtual
// filesystem backing the guest language's open/read/write/close
// built-ins: a simple path to contents map, with no locking, matching
// the single-goroutine-per-interpreter execution model.
package vfs

import "fmt"

// FS is an in-memory path→contents store.
type FS struct {
	files map[string]string
}

// New returns an empty filesystem.
func New() *FS {
	return &FS{files: make(map[string]string)}
}

// Stat reports whether path exists.
func (f *FS) Stat(path string) bool {
	_, ok := f.files[path]
	return ok
}

// Read returns the full contents of path, or an error if it does not
// exist.
func (f *FS) Read(path string) (string, error) {
	contents, ok := f.files[path]
	if !ok {
		return "", fmt.Errorf("no such file: %q", path)
	}
	return contents, nil
}

// Write replaces the contents of path.
func (f *FS) Write(path, contents string) {
	f.files[path] = contents
}

// Append concatenates contents onto path's existing contents (or
// creates it if absent).
func (f *FS) Append(path, contents string) {
	f.files[path] += contents
}

// Paths returns every known path, for host introspection.
func (f *FS) Paths() []string {
	paths := make([]string, 0, len(f.files))
	for p := range f.files {
		paths = append(paths, p)
	}
	return paths
}

// Mode identifies how a File handle was opened.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
	ModeAppend
)

// ParseMode maps the guest-visible mode string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "r":
		return ModeRead, nil
	case "w":
		return ModeWrite, nil
	case "a":
		return ModeAppend, nil
	default:
		return 0, fmt.Errorf("invalid file mode %q", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "r"
	case ModeWrite:
		return "w"
	case ModeAppend:
		return "a"
	default:
		return "?"
	}
}

// Handle is an open file: a path, mode, read cursor, and write-behind
// buffer that flushes into the owning FS on Close.
type Handle struct {
	fs     *FS
	path   string
	mode   Mode
	cursor int
	read   string
	buf    string
	closed bool
}

// Open opens path in mode against fs. Opening for read on a missing
// path fails; opening for write/append always succeeds. An append handle
// also loads any existing contents, but Read and Readline reject every
// mode except read, so those contents cannot be read through it.
func Open(fs *FS, path string, mode Mode) (*Handle, error) {
	h := &Handle{fs: fs, path: path, mode: mode}
	switch mode {
	case ModeRead:
		contents, err := fs.Read(path)
		if err != nil {
			return nil, err
		}
		h.read = contents
	case ModeAppend:
		h.read, _ = fs.files[path]
	case ModeWrite:
	}
	return h, nil
}

// Write appends s to the handle's write buffer. Valid only in write or
// append mode.
func (h *Handle) Write(s string) error {
	if h.mode == ModeRead {
		return fmt.Errorf("file %q not opened for writing", h.path)
	}
	h.buf += s
	return nil
}

// Read returns the remaining unread contents and advances the cursor to
// the end. Valid only in read mode.
func (h *Handle) Read() (string, error) {
	if h.mode != ModeRead {
		return "", fmt.Errorf("file %q not opened for reading", h.path)
	}
	rest := h.read[h.cursor:]
	h.cursor = len(h.read)
	return rest, nil
}

// Readline returns the next line (without its trailing newline) and
// advances the cursor past it. Returns "" once exhausted.
func (h *Handle) Readline() (string, error) {
	if h.mode != ModeRead {
		return "", fmt.Errorf("file %q not opened for reading", h.path)
	}
	if h.cursor >= len(h.read) {
		return "", nil
	}
	rest := h.read[h.cursor:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '\n' {
			h.cursor += i + 1
			return rest[:i], nil
		}
	}
	h.cursor = len(h.read)
	return rest, nil
}

// Close flushes a write/append buffer into the owning FS. Idempotent.
func (h *Handle) Close() {
	if h.closed {
		return
	}
	h.closed = true
	switch h.mode {
	case ModeWrite:
		h.fs.Write(h.path, h.buf)
	case ModeAppend:
		h.fs.Append(h.path, h.buf)
	}
}

// Path returns the handle's path.
func (h *Handle) Path() string { return h.path }

// ModeOf returns the handle's mode.
func (h *Handle) ModeOf() Mode { return h.mode }
