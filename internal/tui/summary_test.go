package tui

import (
	"strings"
	"testing"

	"mediascrub/internal/processor"
)

func TestRenderSummaryCounts(t *testing.T) {
	out := RenderSummary(processor.Summary{
		Root:        "/photos",
		Total:       3,
		Processed:   2,
		Succeeded:   2,
		Unsupported: 1,
		BytesSaved:  512,
		Failures:    []processor.FailedFile{},
	})

	for _, want := range []string{"/photos", "Cleaned", "Unsupported (skipped)", "512 B", "All supported files cleaned."} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Failed file") {
		t.Fatal("failure table rendered without failures")
	}
}

func TestRenderSummaryListsFailures(t *testing.T) {
	out := RenderSummary(processor.Summary{
		Total:     2,
		Processed: 2,
		Succeeded: 1,
		Failed:    1,
		Failures: []processor.FailedFile{
			{Path: "/photos/b.mp4", Reason: "ffmpeg not found"},
		},
	})
	for _, want := range []string{"Failed file", "/photos/b.mp4", "ffmpeg not found", "1 file(s) could not be cleaned."} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryCancelled(t *testing.T) {
	out := RenderSummary(processor.Summary{Total: 10, Processed: 3, Succeeded: 3, Cancelled: true})
	if !strings.Contains(out, "Cancelled after 3 of 10 files.") {
		t.Fatalf("summary:\n%s", out)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1024:            "1.0 KiB",
		1536:            "1.5 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Fatalf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
