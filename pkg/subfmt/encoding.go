package subfmt

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/subx-cli/subx/pkg/subxerr"
)

// EncodingResult is what DetectEncoding found.
type EncodingResult struct {
	Text       string
	Name       string
	Confidence float64
}

var namedEncodings = map[string]encoding.Encoding{
	"gbk":          simplifiedchinese.GBK,
	"gb18030":      simplifiedchinese.GB18030,
	"big5":         traditionalchinese.Big5,
	"shift-jis":    japanese.ShiftJIS,
	"euc-jp":       japanese.EUCJP,
	"euc-kr":       korean.EUCKR,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
}

// candidateOrder is the fixed fallback sequence content-sniffing walks once
// a BOM-less byte stream fails to validate as UTF-8, per spec.md §4.3.
var candidateOrder = []string{"gbk", "big5", "shift-jis", "euc-kr"}

// DetectEncoding implements spec.md §4.3: BOM sniffing first, then a clean
// UTF-8 decode, then each candidate legacy encoding in a fixed order, each
// scored by the fraction of runes that decode without hitting the Unicode
// replacement character. The first candidate (including the configured
// default if it differs from every built-in candidate) whose confidence
// meets the threshold wins; otherwise detection fails with
// KindSubtitleEncoding.
func DetectEncoding(raw []byte, defaultEncoding string, confidenceThreshold float64) (EncodingResult, error) {
	if len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF {
		return EncodingResult{Text: string(raw[3:]), Name: "utf-8-bom", Confidence: 1.0}, nil
	}
	if len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xFE {
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), raw, "utf-16le")
	}
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), raw, "utf-16be")
	}

	if utf8.Valid(raw) {
		return EncodingResult{Text: string(raw), Name: "utf-8", Confidence: 1.0}, nil
	}

	order := candidateOrder
	if _, known := namedEncodings[defaultEncoding]; known {
		listed := false
		for _, name := range candidateOrder {
			listed = listed || name == defaultEncoding
		}
		if !listed {
			order = append(append([]string{}, candidateOrder...), defaultEncoding)
		}
	}

	var best EncodingResult
	for _, name := range order {
		enc, ok := namedEncodings[name]
		if !ok {
			continue
		}
		res, err := decodeWith(enc, raw, name)
		if err != nil {
			continue
		}
		if res.Confidence >= confidenceThreshold {
			return res, nil
		}
		if res.Confidence > best.Confidence {
			best = res
		}
	}

	return EncodingResult{}, subxerr.New(subxerr.KindSubtitleEncoding,
		"unable to determine text encoding with sufficient confidence")
}

func decodeWith(enc encoding.Encoding, raw []byte, name string) (EncodingResult, error) {
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return EncodingResult{}, err
	}
	total, bad := 0, 0
	for _, r := range string(decoded) {
		total++
		if r == utf8.RuneError {
			bad++
		}
	}
	confidence := 1.0
	if total > 0 {
		confidence = 1.0 - float64(bad)/float64(total)
	}
	return EncodingResult{Text: string(decoded), Name: name, Confidence: confidence}, nil
}
