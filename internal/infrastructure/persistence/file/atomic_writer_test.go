package file_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/tasktrack/internal/infrastructure/persistence/file"
)

func assertNoTempFiles(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	entries, _ := afero.ReadDir(fs, dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".snapshot-") {
			t.Errorf("Temp file not cleaned up: %s", e.Name())
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		data    string
		setupFS func(fs afero.Fs) error
	}{
		{
			name: "Write new file",
			path: "data/tasks.csv",
			data: "id,type\n",
		},
		{
			name: "Overwrite existing file",
			path: "data/tasks.csv",
			data: "new content",
			setupFS: func(fs afero.Fs) error {
				return afero.WriteFile(fs, "data/tasks.csv", []byte("old content"), 0o644)
			},
		},
		{
			name: "Write to nested directory",
			path: "a/b/c/tasks.csv",
			data: "nested",
		},
		{
			name: "Write empty file",
			path: "data/empty.csv",
			data: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tt.setupFS != nil {
				if err := tt.setupFS(fs); err != nil {
					t.Fatalf("Failed to setup filesystem: %v", err)
				}
			}

			if err := file.WriteFileAtomic(fs, tt.path, []byte(tt.data)); err != nil {
				t.Fatalf("WriteFileAtomic() error = %v", err)
			}

			content, err := afero.ReadFile(fs, tt.path)
			if err != nil {
				t.Fatalf("Failed to read file: %v", err)
			}
			if string(content) != tt.data {
				t.Errorf("File content mismatch: got %q, want %q", string(content), tt.data)
			}

			assertNoTempFiles(t, fs, "data")
		})
	}
}

func TestWriteAtomic_WriterFailureKeepsOldFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "data/tasks.csv", []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := file.WriteAtomic(fs, "data/tasks.csv", func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("encoder failed")
	})
	if err == nil {
		t.Fatal("Expected error from failing writer")
	}

	content, _ := afero.ReadFile(fs, "data/tasks.csv")
	if string(content) != "old" {
		t.Errorf("Original file was modified: %q", string(content))
	}
	assertNoTempFiles(t, fs, "data")
}

// failRenameFS is a filesystem whose Rename always fails
type failRenameFS struct {
	afero.Fs
}

func (f *failRenameFS) Rename(oldname, newname string) error {
	return errors.New("rename failed")
}

func TestWriteFileAtomic_RenameFailure(t *testing.T) {
	fs := &failRenameFS{Fs: afero.NewMemMapFs()}

	if err := file.WriteFileAtomic(fs, "data/tasks.csv", []byte("content")); err == nil {
		t.Error("Expected error when rename fails")
	}
	assertNoTempFiles(t, fs, "data")
}

func TestWriteFileAtomic_ReadOnlyFS(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	if err := file.WriteFileAtomic(fs, "data/tasks.csv", []byte("content")); err == nil {
		t.Error("Expected error on read-only filesystem")
	}
}
