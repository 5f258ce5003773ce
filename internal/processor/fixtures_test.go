package processor

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// writeJPEGWithExif writes a real, decodable JPEG carrying an EXIF block with
// a Model tag and a GPS IFD. It returns the bytes the file should contain
// once the EXIF segment has been removed.
func writeJPEGWithExif(t *testing.T, path string) []byte {
	t.Helper()

	clean := encodeJPEG(t)
	exif := append([]byte("Exif\x00\x00"), buildExifTIFF()...)

	var buf bytes.Buffer
	buf.Write(clean[:2])
	buf.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(exif)+2))
	buf.Write(exif)
	buf.Write(clean[2:])

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write jpeg: %v", err)
	}
	return clean
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 0x80, A: 0xff})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// buildExifTIFF lays out a little-endian TIFF structure:
//
//	IFD0 @8:  Model (ASCII "TestCam") @38, GPSInfo -> @46
//	GPS  @46: GPSLatitudeRef (ASCII "N", inline)
func buildExifTIFF() []byte {
	var tiff bytes.Buffer
	le := binary.LittleEndian
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, le, uint32(8))

	_ = binary.Write(&tiff, le, uint16(2))
	_ = binary.Write(&tiff, le, uint16(0x0110))
	_ = binary.Write(&tiff, le, uint16(2))
	_ = binary.Write(&tiff, le, uint32(8))
	_ = binary.Write(&tiff, le, uint32(38))
	_ = binary.Write(&tiff, le, uint16(0x8825))
	_ = binary.Write(&tiff, le, uint16(4))
	_ = binary.Write(&tiff, le, uint32(1))
	_ = binary.Write(&tiff, le, uint32(46))
	_ = binary.Write(&tiff, le, uint32(0))
	tiff.Write([]byte("TestCam\x00"))

	_ = binary.Write(&tiff, le, uint16(1))
	_ = binary.Write(&tiff, le, uint16(0x0001))
	_ = binary.Write(&tiff, le, uint16(2))
	_ = binary.Write(&tiff, le, uint32(2))
	tiff.Write([]byte{'N', 0, 0, 0})
	_ = binary.Write(&tiff, le, uint32(0))

	return tiff.Bytes()
}

// Video fixtures are plain text that opens with an ftyp box type at offset 4.
// The fake transcoder drops "title=" lines, standing in for container tags,
// and keeps everything else as stream data.
const (
	videoFixture      = "0018ftypisom-video-stream\ntitle=secret holiday\naudio-stream\n"
	videoFixtureClean = "0018ftypisom-video-stream\naudio-stream\n"
)

const fakeStripScript = `#!/bin/sh
in=""
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-i" ]; then in="$arg"; fi
  prev="$arg"
  out="$arg"
done
grep -v '^title=' "$in" > "$out"
`

const fakeFailScript = `#!/bin/sh
out=""
for arg in "$@"; do out="$arg"; done
printf 'partial' > "$out"
echo "moov atom not found" >&2
exit 1
`

// writeScript installs an executable shell script and returns its path.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script transcoder fakes need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

// backdate pins a file's mtime so later comparisons are meaningful.
func backdate(t *testing.T, path string) time.Time {
	t.Helper()
	stamp := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return stamp
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if isTempName(e.Name()) {
			t.Fatalf("stray temp file left behind: %s", e.Name())
		}
	}
}

// recorder is a Sink that keeps every call for later assertions.
type recorder struct {
	started   []int
	results   []StripResult
	progress  []ProgressState
	summaries []Summary
}

func (r *recorder) OnStart(total int)            { r.started = append(r.started, total) }
func (r *recorder) OnFileResult(res StripResult) { r.results = append(r.results, res) }
func (r *recorder) OnProgress(completed, total int) {
	r.progress = append(r.progress, ProgressState{Total: total, Completed: completed})
}
func (r *recorder) OnComplete(s Summary) { r.summaries = append(r.summaries, s) }

func (r *recorder) result(t *testing.T, path string) StripResult {
	t.Helper()
	for _, res := range r.results {
		if res.Path == path {
			return res
		}
	}
	t.Fatalf("no result recorded for %s", path)
	return StripResult{}
}
