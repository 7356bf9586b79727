package romloader

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func createTestRawFile(t *testing.T, data []byte) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.bin")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func createTestZipFile(t *testing.T, data []byte, name string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	fw, err := w.Create(name)
	if err != nil {
		t.Fatalf("failed to create file in zip: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("failed to write to zip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return path
}

func createTestGzipFile(t *testing.T, data []byte) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.bin.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create gzip file: %v", err)
	}
	defer f.Close()

	w := gzip.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("failed to write to gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close gzip: %v", err)
	}
	return path
}

func TestLoadGame_RawLoad(t *testing.T) {
	testData := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	path := createTestRawFile(t, testData)

	data, name, err := LoadGame(path, nil)
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if !bytes.Equal(data, testData) {
		t.Errorf("data mismatch: expected %v, got %v", testData, data)
	}
	if name != "test.bin" {
		t.Errorf("name mismatch: expected test.bin, got %s", name)
	}
}

func TestLoadGame_ZipLoad(t *testing.T) {
	testData := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	path := createTestZipFile(t, testData, "game.smc")

	data, name, err := LoadGame(path, []string{".smc"})
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if !bytes.Equal(data, testData) {
		t.Errorf("data mismatch: expected %v, got %v", testData, data)
	}
	if name != "game.smc" {
		t.Errorf("name mismatch: expected game.smc, got %s", name)
	}
}

func TestLoadGame_GzipLoad(t *testing.T) {
	testData := []byte{0x11, 0x22, 0x33, 0x44, 0x55}
	path := createTestGzipFile(t, testData)

	data, _, err := LoadGame(path, nil)
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if !bytes.Equal(data, testData) {
		t.Errorf("data mismatch: expected %v, got %v", testData, data)
	}
}

func TestLoadGame_FormatDetectionMagic(t *testing.T) {
	testCases := []struct {
		header   []byte
		path     string
		expected formatType
	}{
		{[]byte{0x50, 0x4B, 0x03, 0x04}, "file.dat", formatZIP},
		{[]byte{0x50, 0x4B, 0x05, 0x06}, "file.dat", formatZIP},
		{[]byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, "file.dat", format7z},
		{[]byte{0x1F, 0x8B}, "file.dat", formatGzip},
		{[]byte{0x52, 0x61, 0x72, 0x21}, "file.dat", formatRAR},
	}

	for _, tc := range testCases {
		result := detectFormat(tc.header, tc.path)
		if result != tc.expected {
			t.Errorf("detectFormat(%v, %s): expected %d, got %d", tc.header, tc.path, tc.expected, result)
		}
	}
}

func TestLoadGame_FormatDetectionExtension(t *testing.T) {
	testCases := []struct {
		path     string
		expected formatType
	}{
		{"game.zip", formatZIP},
		{"game.ZIP", formatZIP},
		{"game.7z", format7z},
		{"game.gz", formatGzip},
		{"game.tgz", formatGzip},
		{"game.tar.gz", formatGzip},
		{"game.rar", formatRAR},
		{"game.unknown", formatRaw},
	}

	for _, tc := range testCases {
		// Empty header forces extension-based detection.
		result := detectFormat([]byte{}, tc.path)
		if result != tc.expected {
			t.Errorf("detectFormat([], %s): expected %d, got %d", tc.path, tc.expected, result)
		}
	}
}

func TestLoadGame_NoMatchInArchive(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create zip: %v", err)
	}

	w := zip.NewWriter(f)
	fw, _ := w.Create("readme.txt")
	fw.Write([]byte("hello"))
	w.Close()
	f.Close()

	_, _, err = LoadGame(path, []string{".smc"})
	if err != ErrNoMatchingFile {
		t.Errorf("expected ErrNoMatchingFile, got %v", err)
	}
}

func TestLoadGame_FileTooLarge(t *testing.T) {
	largeData := make([]byte, maxGameSize+1)

	tmpDir := t.TempDir()
	gzPath := filepath.Join(tmpDir, "large.bin.gz")
	f, err := os.Create(gzPath)
	if err != nil {
		t.Fatalf("failed to create gzip: %v", err)
	}

	w := gzip.NewWriter(f)
	w.Write(largeData)
	w.Close()
	f.Close()

	_, _, err = LoadGame(gzPath, nil)
	if err == nil {
		t.Error("expected error for oversized file")
	}
}

func TestLoadGame_FileNotFound(t *testing.T) {
	_, _, err := LoadGame("/nonexistent/path/game.bin", nil)
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestMatchesExtension(t *testing.T) {
	testCases := []struct {
		name       string
		extensions []string
		expected   bool
	}{
		{"game.smc", []string{".smc"}, true},
		{"game.SMC", []string{".smc"}, true},
		{"game.sfc", []string{".smc", ".sfc"}, true},
		{"game.txt", []string{".smc"}, false},
		{"game.bin", nil, true},
	}

	for _, tc := range testCases {
		result := matchesExtension(tc.name, tc.extensions)
		if result != tc.expected {
			t.Errorf("matchesExtension(%q, %v): expected %v, got %v", tc.name, tc.extensions, tc.expected, result)
		}
	}
}

func TestLoadGame_ZipWithSubdirectory(t *testing.T) {
	testData := []byte{0x12, 0x34, 0x56}
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create zip: %v", err)
	}

	w := zip.NewWriter(f)
	fw, _ := w.Create("roms/games/test.smc")
	fw.Write(testData)
	w.Close()
	f.Close()

	data, name, err := LoadGame(path, []string{".smc"})
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if !bytes.Equal(data, testData) {
		t.Errorf("data mismatch: expected %v, got %v", testData, data)
	}
	if name != "test.smc" {
		t.Errorf("name should be just the filename, got %s", name)
	}
}

func TestLoadGame_EmptyFile(t *testing.T) {
	path := createTestRawFile(t, []byte{})

	data, _, err := LoadGame(path, nil)
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty data, got %d bytes", len(data))
	}
}

func TestMagicBytesDefinition(t *testing.T) {
	if !bytes.Equal(magicZIP, []byte{0x50, 0x4B, 0x03, 0x04}) {
		t.Error("ZIP magic bytes incorrect")
	}
	if !bytes.Equal(magic7z, []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}) {
		t.Error("7z magic bytes incorrect")
	}
	if !bytes.Equal(magicGzip, []byte{0x1F, 0x8B}) {
		t.Error("Gzip magic bytes incorrect")
	}
	if !bytes.Equal(magicRAR, []byte{0x52, 0x61, 0x72, 0x21}) {
		t.Error("RAR magic bytes incorrect")
	}
}
