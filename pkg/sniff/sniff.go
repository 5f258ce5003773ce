package sniff

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// Kind identifies a file format recognised by its leading bytes.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindISOBMFF
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindISOBMFF:
		return "isobmff"
	default:
		return "unknown"
	}
}

// HeaderSize is the number of bytes DetectHeader needs.
const HeaderSize = 12

var (
	jpegSig = []byte{0xff, 0xd8, 0xff}

	// Top-level atoms that may open an MP4 or QuickTime file. Old QuickTime
	// files frequently start with mdat or wide instead of ftyp.
	isoBoxTypes = [][]byte{
		[]byte("ftyp"),
		[]byte("moov"),
		[]byte("mdat"),
		[]byte("wide"),
		[]byte("free"),
		[]byte("skip"),
		[]byte("pnot"),
	}
)

// ErrShortHeader is returned when fewer than HeaderSize bytes are available.
var ErrShortHeader = errors.New("header too short")

// DetectHeader inspects the first HeaderSize bytes of a file for known signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) >= len(jpegSig) && bytes.HasPrefix(header, jpegSig) {
		return KindJPEG, nil
	}
	if len(header) < HeaderSize {
		return KindUnknown, ErrShortHeader
	}

	boxType := header[4:8]
	for _, t := range isoBoxTypes {
		if bytes.Equal(boxType, t) {
			return KindISOBMFF, nil
		}
	}

	return KindUnknown, nil
}

// SniffFile reads the first bytes of a file to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads up to HeaderSize bytes from r and determines its type.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return KindUnknown, ErrShortHeader
		}
		return KindUnknown, err
	}

	return DetectHeader(header[:n])
}
