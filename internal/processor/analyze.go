package processor

import (
	"bytes"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// exifAnalysis summarises the privacy-relevant tags of an EXIF block.
type exifAnalysis struct {
	GPSCount     int
	HasModel     bool
	HasTimestamp bool
	SerialCount  int
}

// Categories lists the kinds of identifying data that were found.
func (a exifAnalysis) Categories() []string {
	var cats []string
	if a.GPSCount > 0 {
		cats = append(cats, "GPS")
	}
	if a.HasModel {
		cats = append(cats, "Device Model")
	}
	if a.HasTimestamp {
		cats = append(cats, "Timestamp")
	}
	if a.SerialCount > 0 {
		cats = append(cats, "Serial Number")
	}
	return cats
}

func analyzeExif(data []byte) (exifAnalysis, error) {
	analysis := exifAnalysis{}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(bytes.NewReader(data), nil, true)
	if err != nil {
		if errorsIsNoExif(err) {
			return analysis, nil
		}
		return analysis, err
	}

	for _, tag := range tags {
		name := tag.TagName

		if strings.HasPrefix(name, "GPS") || strings.Contains(tag.IfdPath, "GPS") {
			analysis.GPSCount++
		}
		if name == "Model" || name == "Make" || name == "CameraModelName" {
			analysis.HasModel = true
		}
		if name == "DateTimeOriginal" || name == "DateTimeDigitized" || name == "DateTime" {
			analysis.HasTimestamp = true
		}
		if strings.Contains(strings.ToLower(name), "serial") {
			analysis.SerialCount++
		}
	}

	return analysis, nil
}

func errorsIsNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
