package sniff

import (
	"bytes"
	"errors"
	"testing"
)

func TestDetectHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  []byte
		want    Kind
		wantErr error
	}{
		{name: "jpeg", header: []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0, 1}, want: KindJPEG},
		{name: "short jpeg", header: []byte{0xff, 0xd8, 0xff}, want: KindJPEG},
		{name: "mp4 ftyp", header: append([]byte{0, 0, 0, 0x18}, []byte("ftypisom")...), want: KindISOBMFF},
		{name: "quicktime wide", header: append([]byte{0, 0, 0, 0x08}, []byte("wide\x00\x00\x00\x00")...), want: KindISOBMFF},
		{name: "text", header: []byte("hello, world"), want: KindUnknown},
		{name: "too short", header: []byte("abc"), want: KindUnknown, wantErr: ErrShortHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectHeader(tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("kind = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSniffReaderEmpty(t *testing.T) {
	if _, err := SniffReader(bytes.NewReader(nil)); !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}
