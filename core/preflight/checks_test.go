package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"turntable/core"
)

func TestCheckEnvFile(t *testing.T) {
	t.Run("missing file warns", func(t *testing.T) {
		checker := NewChecker().WithEnvPath(filepath.Join(t.TempDir(), ".env"))
		result := checker.CheckEnvFile()
		if !result.Valid {
			t.Error("missing .env should not fail preflight")
		}
		if !result.Warning {
			t.Error("missing .env should raise a warning")
		}
	})

	t.Run("existing file passes", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("FAL_KEY=id:secret\n"), 0644); err != nil {
			t.Fatalf("writing env file: %v", err)
		}
		result := NewChecker().WithEnvPath(envPath).CheckEnvFile()
		if !result.Valid || result.Warning {
			t.Errorf("existing .env should pass cleanly, got valid=%v warning=%v",
				result.Valid, result.Warning)
		}
	})

	t.Run("directory fails", func(t *testing.T) {
		result := NewChecker().WithEnvPath(t.TempDir()).CheckEnvFile()
		if result.Valid {
			t.Error("a directory at the env path should fail")
		}
	})
}

func TestCheckAPIKey(t *testing.T) {
	t.Run("missing key fails", func(t *testing.T) {
		t.Setenv("FAL_KEY", "")
		result := NewChecker().CheckAPIKey()
		if result.Valid {
			t.Error("empty FAL_KEY should fail")
		}
		if code := core.GetErrorCode(result.Error); code != core.ErrCodeMissingFALKey {
			t.Errorf("error code = %q, want %q", code, core.ErrCodeMissingFALKey)
		}
	})

	t.Run("key without separator warns", func(t *testing.T) {
		t.Setenv("FAL_KEY", "justonetoken")
		result := NewChecker().CheckAPIKey()
		if !result.Valid {
			t.Error("key without separator should still pass")
		}
		if !result.Warning {
			t.Error("key without separator should warn")
		}
	})

	t.Run("well-formed key passes", func(t *testing.T) {
		t.Setenv("FAL_KEY", "key-id:key-secret")
		result := NewChecker().CheckAPIKey()
		if !result.Valid || result.Warning {
			t.Errorf("well-formed key should pass cleanly, got valid=%v warning=%v",
				result.Valid, result.Warning)
		}
	})

	t.Run("never echoes the key", func(t *testing.T) {
		t.Setenv("FAL_KEY", "supersecretkeymaterial:0123456789abcdef")
		result := NewChecker().CheckAPIKey()
		if strings.Contains(result.Message, "supersecretkeymaterial") {
			t.Error("check message must not contain the key")
		}
	})
}

func TestCheckInputImage(t *testing.T) {
	tempDir := t.TempDir()

	// Content is junk on purpose: preflight stats the file, it does not
	// decode it. Decoding is imaging.Validate's job.
	imagePath := filepath.Join(tempDir, "product.png")
	if err := os.WriteFile(imagePath, []byte("png bytes"), 0644); err != nil {
		t.Fatalf("writing test image: %v", err)
	}
	textPath := filepath.Join(tempDir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("not an image"), 0644); err != nil {
		t.Fatalf("writing text file: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		wantValid bool
	}{
		{"existing png", imagePath, true},
		{"empty path", "", false},
		{"missing file", filepath.Join(tempDir, "absent.png"), false},
		{"directory", tempDir, false},
		{"unsupported extension", textPath, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewChecker().WithInputPath(tt.path).CheckInputImage()
			if result.Valid != tt.wantValid {
				t.Errorf("CheckInputImage(%q).Valid = %v, want %v (message: %s)",
					tt.path, result.Valid, tt.wantValid, result.Message)
			}
			if !tt.wantValid && result.Error == nil {
				t.Error("failed check should carry an error")
			}
		})
	}
}

func TestCheckOutputDir(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out", "views")
		result := NewChecker().WithOutputDir(dir).CheckOutputDir()
		if !result.Valid {
			t.Fatalf("CheckOutputDir failed: %v", result.Error)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Error("output directory should exist after the check")
		}
	})

	t.Run("leaves no probe file behind", func(t *testing.T) {
		dir := t.TempDir()
		if result := NewChecker().WithOutputDir(dir).CheckOutputDir(); !result.Valid {
			t.Fatalf("CheckOutputDir failed: %v", result.Error)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("reading output dir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("output dir should be empty after the check, found %d entries", len(entries))
		}
	})

	t.Run("file in the way fails", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocked")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatalf("writing blocker: %v", err)
		}
		result := NewChecker().WithOutputDir(blocker).CheckOutputDir()
		if result.Valid {
			t.Error("a regular file at the output path should fail")
		}
	})

	t.Run("empty path fails", func(t *testing.T) {
		if result := NewChecker().CheckOutputDir(); result.Valid {
			t.Error("empty output dir should fail")
		}
	})
}

func TestCheckDiskSpace(t *testing.T) {
	t.Run("plenty of space passes", func(t *testing.T) {
		checker := NewChecker().WithOutputDir(t.TempDir()).WithMinFreeBytes(1)
		result := checker.CheckDiskSpace()
		if !result.Valid || result.Warning {
			t.Errorf("tiny threshold should pass cleanly, got valid=%v warning=%v (message: %s)",
				result.Valid, result.Warning, result.Message)
		}
	})

	t.Run("huge threshold warns", func(t *testing.T) {
		const exabyte = int64(1) << 60
		checker := NewChecker().WithOutputDir(t.TempDir()).WithMinFreeBytes(exabyte)
		result := checker.CheckDiskSpace()
		if !result.Valid {
			t.Error("low disk space is a warning, not a failure")
		}
		if !result.Warning {
			t.Error("free space below threshold should warn")
		}
	})
}

func TestFreeDiskSpace(t *testing.T) {
	free, err := FreeDiskSpace(t.TempDir())
	if err != nil {
		t.Fatalf("FreeDiskSpace: %v", err)
	}
	if free <= 0 {
		t.Errorf("free space = %d, want > 0", free)
	}
}

func TestFreeDiskSpace_NonexistentPathUsesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not", "yet", "created")
	free, err := FreeDiskSpace(path)
	if err != nil {
		t.Fatalf("FreeDiskSpace: %v", err)
	}
	if free <= 0 {
		t.Errorf("free space = %d, want > 0", free)
	}
}
