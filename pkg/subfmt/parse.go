package subfmt

import (
	"github.com/subx-cli/subx/pkg/subxerr"
)

// ParseOptions carries the knobs Parse needs from the resolved
// configuration without importing pkg/config, keeping subfmt's dependency
// graph one-directional.
type ParseOptions struct {
	ExplicitFormat       Format
	DefaultEncoding      string
	EncodingConfidence   float64
	FrameRate            float64 // only consulted for MicroDVD .sub content
	PreserveStyling      bool
}

// Parse runs encoding detection, then format detection, then the matching
// format-specific parser over raw file bytes, in the order spec.md §4.2
// describes: decode first, recognize structure second.
func Parse(filename string, raw []byte, opts ParseOptions) (*Document, error) {
	enc, err := DetectEncoding(raw, opts.DefaultEncoding, opts.EncodingConfidence)
	if err != nil {
		return nil, err
	}

	format, err := DetectFormat(filename, []byte(enc.Text), opts.ExplicitFormat)
	if err != nil {
		return nil, err
	}

	var doc *Document
	switch format {
	case FormatSRT:
		doc, err = ParseSRT(enc.Text)
	case FormatVTT:
		doc, err = ParseVTT(enc.Text)
	case FormatASS:
		doc, err = ParseASS(enc.Text)
	case FormatSUB:
		doc, err = ParseSUB(enc.Text, opts.FrameRate)
	default:
		return nil, subxerr.New(subxerr.KindFormatUnsupported, "no parser registered for format "+string(format))
	}
	if err != nil {
		return nil, err
	}

	doc.Metadata.Encoding = enc.Name
	if !opts.PreserveStyling {
		doc.DropStyling()
	}
	return doc, nil
}

// Write serializes doc in the given output format.
func Write(doc *Document, format Format, variant SubVariant) (string, error) {
	switch format {
	case FormatSRT:
		return WriteSRT(doc), nil
	case FormatVTT:
		return WriteVTT(doc), nil
	case FormatASS:
		return WriteASS(doc), nil
	case FormatSUB:
		return WriteSUB(doc, variant), nil
	default:
		return "", subxerr.New(subxerr.KindFormatUnsupported, "no serializer registered for format "+string(format))
	}
}
