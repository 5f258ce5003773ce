package processor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var kindsByExt = map[string]Kind{
	".jpg":  KindImage,
	".jpeg": KindImage,
	".mp4":  KindVideo,
	".mov":  KindVideo,
}

// Classify picks a handling strategy from the lower-cased extension. It does
// no I/O.
func Classify(path string) MediaFile {
	kind, ok := kindsByExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		kind = KindUnsupported
	}
	return MediaFile{Path: path, Kind: kind}
}

// tempMarker tags every scratch file this package creates so the walker can
// recognise leftovers from an interrupted run.
const tempMarker = ".scrub-tmp"

// tempPath returns a hidden scratch path beside path. The original extension
// is kept last so the transcoder can infer the output container.
func tempPath(path string) string {
	dir, base := filepath.Split(path)
	name := fmt.Sprintf(".%s.%s%s%s", base, uuid.NewString(), tempMarker, filepath.Ext(base))
	return filepath.Join(dir, name)
}

// isTempName reports whether name has the exact shape tempPath produces:
// ".<base>.<uuid>.scrub-tmp<ext of base>".
func isTempName(name string) bool {
	rest, ok := strings.CutPrefix(name, ".")
	if !ok {
		return false
	}
	i := strings.LastIndex(rest, tempMarker)
	if i < 0 {
		return false
	}
	stem, ext := rest[:i], rest[i+len(tempMarker):]

	const idLen = 36
	if len(stem) < idLen+2 || stem[len(stem)-idLen-1] != '.' {
		return false
	}
	if _, err := uuid.Parse(stem[len(stem)-idLen:]); err != nil {
		return false
	}
	base := stem[:len(stem)-idLen-1]
	return filepath.Ext(base) == ext
}
