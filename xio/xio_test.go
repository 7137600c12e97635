package xio

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateAndOpen(t *testing.T) {
	for _, name := range []string{"plain.txt", "data.txt.gz", "data.txt.zst"} {
		t.Run(name, func(t *testing.T) {
			var (
				dir  = t.TempDir()
				path = filepath.Join(dir, name)
				want = "10.1/a\n10.1/b\n"
			)
			f, err := CreateFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := io.WriteString(f, want); err != nil {
				t.Fatal(err)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Fatalf("file visible before close: %v", err)
			}
			if err := f.Close(); err != nil {
				t.Fatal(err)
			}
			r, err := OpenFile(path)
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()
			b, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != want {
				t.Fatalf("got %q, want %q", string(b), want)
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 1 {
				t.Fatalf("got %d entries, want only the final file", len(entries))
			}
		})
	}
}

func TestAbort(t *testing.T) {
	var (
		dir  = t.TempDir()
		path = filepath.Join(dir, "out.csv")
	)
	f, err := CreateFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(f, "partial"); err != nil {
		t.Fatal(err)
	}
	if err := f.Abort(); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries after abort, want 0", len(entries))
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close after abort: %v", err)
	}
}

func TestOpenFileMissing(t *testing.T) {
	if _, err := OpenFile(filepath.Join(t.TempDir(), "missing.csv")); !os.IsNotExist(err) {
		t.Fatalf("got %v, want not exist error", err)
	}
}
