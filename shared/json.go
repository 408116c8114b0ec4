package shared

import "github.com/bytedance/sonic"

// JSON is the codec used for HTTP request and response bodies.
var JSON = sonic.Config{
	UseNumber:            true,
	EscapeHTML:           false,
	SortMapKeys:          false,
	CompactMarshaler:     true,
	NoQuoteTextMarshaler: true,
	NoNullSliceOrMap:     true,
}.Froze()

// DocumentJSON is the codec used for persisted documents. Map keys are sorted so
// that re-encoding a document that was read back produces the same bytes.
var DocumentJSON = sonic.Config{
	EscapeHTML:       false,
	SortMapKeys:      true,
	CompactMarshaler: true,
	NoNullSliceOrMap: true,
	ValidateString:   true,
}.Froze()
