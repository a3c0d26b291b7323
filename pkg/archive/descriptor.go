package archive

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
)

// HighresLabel is the label of the rendition saafetch downloads
const HighresLabel = "highres"

// ErrNoHighres is returned when a descriptor has no usable highres part
var ErrNoHighres = errors.New("descriptor has no highres part")

// Status is the classification of a descriptor response body
type Status int

const (
	// StatusReady means the body should carry a downloadable descriptor
	StatusReady Status = iota
	// StatusPreparing means the archive has not staged the item yet
	StatusPreparing
	// StatusInvalid means the archive does not know the item
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusPreparing:
		return "preparing"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

var (
	markerUnavailable = []byte("unavailable")
	markerInvalidItem = []byte("invalid item")
)

// Classify inspects a descriptor body by case-sensitive substring.
// "unavailable" wins over "invalid item" when both occur.
func Classify(body []byte) Status {
	switch {
	case bytes.Contains(body, markerUnavailable):
		return StatusPreparing
	case bytes.Contains(body, markerInvalidItem):
		return StatusInvalid
	default:
		return StatusReady
	}
}

// Descriptor is the download_info document of one item
type Descriptor struct {
	Downloads []Download `xml:"download"`
}

// Download is one rendition of the item
type Download struct {
	Label string `xml:"label,attr"`
	Parts []Part `xml:"part"`
}

// Part is one downloadable file of a rendition
type Part struct {
	URL string `xml:"url,attr"`
}

// ParseDescriptor decodes a descriptor body
func ParseDescriptor(body []byte) (*Descriptor, error) {
	var d Descriptor
	if err := xml.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("decode descriptor: %w", err)
	}
	return &d, nil
}

// HighresURL returns the url of the first part of the first highres rendition
func (d *Descriptor) HighresURL() (string, error) {
	for _, dl := range d.Downloads {
		if dl.Label != HighresLabel {
			continue
		}
		for _, p := range dl.Parts {
			if p.URL != "" {
				return p.URL, nil
			}
		}
		break
	}
	return "", ErrNoHighres
}
