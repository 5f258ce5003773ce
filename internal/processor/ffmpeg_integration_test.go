package processor

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func requireTools(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not installed", name)
		}
	}
}

func run(t *testing.T, name string, args ...string) string {
	t.Helper()
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		t.Fatalf("%s %v: %v\n%s", name, args, err, out)
	}
	return string(out)
}

func streamHash(t *testing.T, path string) string {
	t.Helper()
	return run(t, "ffmpeg", "-hide_banner", "-loglevel", "error", "-i", path, "-map", "0", "-c", "copy", "-f", "streamhash", "-hash", "md5", "-")
}

func formatTags(t *testing.T, path string) string {
	t.Helper()
	return run(t, "ffprobe", "-v", "error", "-show_entries", "format_tags:stream_tags", "-of", "default=noprint_wrappers=1", path)
}

func TestFFmpegStripsRealContainer(t *testing.T) {
	requireTools(t, "ffmpeg", "ffprobe")

	root := t.TempDir()
	video := filepath.Join(root, "b.mp4")
	run(t, "ffmpeg", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=1:size=64x64:rate=10",
		"-f", "lavfi", "-i", "sine=duration=1",
		"-c:v", "mpeg4", "-c:a", "aac", "-shortest",
		"-metadata", "title=secret holiday",
		"-metadata", "location=+52.3700+004.8900/",
		video,
	)
	if tags := formatTags(t, video); !strings.Contains(tags, "secret holiday") {
		t.Fatalf("fixture should carry a title tag:\n%s", tags)
	}
	before := streamHash(t, video)

	jpg := filepath.Join(root, "a.jpg")
	writeJPEGWithExif(t, jpg)
	writeFile(t, filepath.Join(root, "c.txt"), "notes")

	summary, err := New(Options{LockDir: t.TempDir()}).Run(context.Background(), root, &recorder{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Succeeded != 2 || summary.Failed != 0 || summary.Unsupported != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	tags := formatTags(t, video)
	if strings.Contains(tags, "secret holiday") || strings.Contains(tags, "location") {
		t.Fatalf("container tags survived:\n%s", tags)
	}
	if after := streamHash(t, video); after != before {
		t.Fatalf("stream data changed:\nbefore %s\nafter  %s", before, after)
	}
	assertNoTempFiles(t, root)

	// A second pass over the cleaned tree succeeds and changes nothing.
	cleanTags := formatTags(t, video)
	again, err := New(Options{LockDir: t.TempDir()}).Run(context.Background(), root, &recorder{})
	if err != nil {
		t.Fatal(err)
	}
	if again.Succeeded != 2 || again.Failed != 0 || again.Unsupported != 1 {
		t.Fatalf("second summary = %+v", again)
	}
	if tags := formatTags(t, video); tags != cleanTags {
		t.Fatalf("second pass changed container tags:\nbefore %s\nafter  %s", cleanTags, tags)
	}
	if after := streamHash(t, video); after != before {
		t.Fatalf("second pass changed stream data:\nbefore %s\nafter  %s", before, after)
	}
	assertNoTempFiles(t, root)
}
