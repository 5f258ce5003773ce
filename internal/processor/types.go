package processor

import "encoding/json"

// Kind is the handling strategy chosen for a file.
type Kind int

const (
	KindUnsupported Kind = iota
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unsupported"
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// MediaFile is a classified path.
type MediaFile struct {
	Path string
	Kind Kind
}

// Outcome is the per-file result of a strip attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "skipped"
	}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

type StripResult struct {
	Path    string  `json:"path"`
	Kind    Kind    `json:"kind"`
	Outcome Outcome `json:"outcome"`
	// Detail is empty on success and holds the failure reason otherwise.
	Detail string `json:"detail,omitempty"`
	Err    error  `json:"-"`
	// Removed lists the metadata categories present before stripping.
	Removed    []string `json:"removed,omitempty"`
	BytesSaved int64    `json:"bytes_saved,omitempty"`
}

func succeeded(file MediaFile) StripResult {
	return StripResult{Path: file.Path, Kind: file.Kind, Outcome: OutcomeSuccess}
}

func failed(file MediaFile, err error) StripResult {
	return StripResult{
		Path:    file.Path,
		Kind:    file.Kind,
		Outcome: OutcomeFailure,
		Detail:  err.Error(),
		Err:     err,
	}
}

func skipped(file MediaFile) StripResult {
	return StripResult{
		Path:    file.Path,
		Kind:    file.Kind,
		Outcome: OutcomeSkipped,
		Detail:  "unsupported file type",
	}
}

// ProgressState counts finished files. Completed never exceeds Total.
type ProgressState struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Percent returns the completed share rounded down, 100 for an empty batch.
func (p ProgressState) Percent() int {
	if p.Total == 0 {
		return 100
	}
	return p.Completed * 100 / p.Total
}

type FailedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Summary is the aggregate reported once per batch.
type Summary struct {
	Root        string       `json:"root"`
	Total       int          `json:"total"`
	Processed   int          `json:"processed"`
	Succeeded   int          `json:"succeeded"`
	Failed      int          `json:"failed"`
	Unsupported int          `json:"unsupported"`
	BytesSaved  int64        `json:"bytes_saved"`
	Failures    []FailedFile `json:"failures"`
	Cancelled   bool         `json:"cancelled,omitempty"`
}

// OK reports whether the batch finished with nothing needing attention.
func (s Summary) OK() bool {
	return s.Failed == 0 && !s.Cancelled
}

func (s *Summary) record(res StripResult) {
	switch res.Outcome {
	case OutcomeSuccess:
		s.Processed++
		s.Succeeded++
		s.BytesSaved += res.BytesSaved
	case OutcomeFailure:
		s.Processed++
		s.Failed++
		s.Failures = append(s.Failures, FailedFile{Path: res.Path, Reason: res.Detail})
	case OutcomeSkipped:
		s.Unsupported++
	}
}
