package archive

import (
	"encoding/xml"
	"fmt"
)

// Metadata is the parsed index.xml of a speller archive: locale and
// provenance of the bundle plus descriptors for the transducers it ships.
type Metadata struct {
	XMLName     xml.Name `xml:"hfstspeller"`
	DTDVersion  string   `xml:"dtdversion,attr"`
	HfstVersion string   `xml:"hfstversion,attr"`
	Info        Info     `xml:"info"`
	Acceptors   []TDesc  `xml:"acceptor"`
	ErrModels   []TDesc  `xml:"errmodel"`
}

// Info describes the bundle as a whole.
type Info struct {
	Locale      string  `xml:"locale"`
	Title       []Title `xml:"title"`
	Description string  `xml:"description"`
	Version     Version `xml:"version"`
	Date        string  `xml:"date"`
	Producer    string  `xml:"producer"`
	Contact     Contact `xml:"contact"`
}

// Title is a human-readable name, optionally per language.
type Title struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

// Version carries the bundle version and its source revision.
type Version struct {
	VCSRev string `xml:"vcsrev,attr"`
	Value  string `xml:",chardata"`
}

// Contact identifies the maintainer.
type Contact struct {
	Name  string `xml:"name,attr"`
	Email string `xml:"email,attr"`
}

// TDesc describes one transducer member of the archive. ID is the member
// file name inside the zip.
type TDesc struct {
	Type        string  `xml:"type,attr"`
	ID          string  `xml:"id,attr"`
	Title       []Title `xml:"title"`
	Description string  `xml:"description"`
}

// ParseMetadata decodes an index.xml document.
func ParseMetadata(data []byte) (*Metadata, error) {
	var meta Metadata
	if err := xml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing speller metadata: %w", err)
	}
	return &meta, nil
}
