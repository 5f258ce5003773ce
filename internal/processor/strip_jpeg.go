package processor

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

var (
	jpegExifHeader = []byte("Exif\x00\x00")
	jpegXmpHeader  = []byte("http://ns.adobe.com/xap/1.0/\x00")
	jpegXmpExt     = []byte("http://ns.adobe.com/xmp/extension/\x00")
	jpegPhotoshop  = []byte("Photoshop 3.0\x00")
	jpegICCHeader  = []byte("ICC_PROFILE\x00")
)

// Metadata block names reported by stripJPEG.
const (
	blockEXIF = "EXIF"
	blockXMP  = "XMP"
	blockIPTC = "IPTC"
	blockICC  = "ICC"
)

// stripJPEG copies a JPEG from r to w, dropping metadata segments. Every other
// byte, including the entropy-coded scan, is copied unchanged. It returns the
// names of the dropped blocks in file order.
func stripJPEG(r io.Reader, w io.Writer, preserveICC bool) ([]string, error) {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	var dropped []string

	soi := make([]byte, 2)
	if _, err := io.ReadFull(br, soi); err != nil {
		return nil, fmt.Errorf("read SOI: %w", err)
	}
	if soi[0] != 0xff || soi[1] != 0xd8 {
		return nil, fmt.Errorf("invalid JPEG SOI")
	}
	if _, err := bw.Write(soi); err != nil {
		return nil, err
	}

	for {
		// Stray bytes and 0xff fill before a marker are copied as found.
		markerPrefix, err := br.ReadByte()
		if err != nil {
			return nil, truncated(err)
		}
		for markerPrefix != 0xff {
			if err := bw.WriteByte(markerPrefix); err != nil {
				return nil, err
			}
			markerPrefix, err = br.ReadByte()
			if err != nil {
				return nil, truncated(err)
			}
		}

		marker, err := br.ReadByte()
		if err != nil {
			return nil, truncated(err)
		}
		for marker == 0xff {
			if err := bw.WriteByte(0xff); err != nil {
				return nil, err
			}
			marker, err = br.ReadByte()
			if err != nil {
				return nil, truncated(err)
			}
		}

		if marker == 0xd9 { // EOI
			if _, err := bw.Write([]byte{0xff, 0xd9}); err != nil {
				return nil, err
			}
			break
		}

		if marker == 0xda { // SOS
			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return nil, err
			}
			if _, err := io.Copy(bw, br); err != nil {
				return nil, err
			}
			break
		}

		if marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7) {
			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return nil, err
			}
			continue
		}

		lenBuf := make([]byte, 2)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			return nil, truncated(err)
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf))
		if segLen < 2 {
			return nil, fmt.Errorf("invalid JPEG segment length %d", segLen)
		}
		payloadLen := segLen - 2
		if marker == 0xe1 || marker == 0xe2 || marker == 0xed {
			payload := make([]byte, payloadLen)
			if _, err := io.ReadFull(br, payload); err != nil {
				return nil, truncated(err)
			}

			if block := metadataBlock(marker, payload, preserveICC); block != "" {
				dropped = appendOnce(dropped, block)
				continue
			}

			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return nil, err
			}
			if _, err := bw.Write(lenBuf); err != nil {
				return nil, err
			}
			if _, err := bw.Write(payload); err != nil {
				return nil, err
			}
			continue
		}

		if _, err := bw.Write([]byte{0xff, marker}); err != nil {
			return nil, err
		}
		if _, err := bw.Write(lenBuf); err != nil {
			return nil, err
		}
		if _, err := io.CopyN(bw, br, int64(payloadLen)); err != nil {
			return nil, truncated(err)
		}
	}

	return dropped, bw.Flush()
}

// metadataBlock names the metadata carried by an APPn payload, or returns ""
// when the segment must be kept.
func metadataBlock(marker byte, payload []byte, preserveICC bool) string {
	switch marker {
	case 0xe1:
		if bytes.HasPrefix(payload, jpegExifHeader) {
			return blockEXIF
		}
		if bytes.HasPrefix(payload, jpegXmpHeader) || bytes.HasPrefix(payload, jpegXmpExt) {
			return blockXMP
		}
	case 0xed:
		if bytes.HasPrefix(payload, jpegPhotoshop) {
			return blockIPTC
		}
	case 0xe2:
		if !preserveICC && bytes.HasPrefix(payload, jpegICCHeader) {
			return blockICC
		}
	}

	return ""
}

func truncated(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func appendOnce(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
