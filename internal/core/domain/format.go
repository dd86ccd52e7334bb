package domain

// Format identifies the parsing strategy for a source file.
type Format string

const (
	// FormatText is plain text, returned unchanged.
	FormatText Format = "text"
	// FormatMarkdown is Markdown, returned unchanged.
	FormatMarkdown Format = "markdown"
	// FormatHTML is HTML, reduced to visible text.
	FormatHTML Format = "html"
	// FormatPDF is PDF, extracted by an external engine.
	FormatPDF Format = "pdf"
	// FormatDOCX is a Word document, extracted from its XML parts.
	FormatDOCX Format = "docx"
	// FormatJSON is a single JSON document, flattened.
	FormatJSON Format = "json"
	// FormatJSONL is line-delimited JSON, flattened per record.
	FormatJSONL Format = "jsonl"
)

// String returns the format name.
func (f Format) String() string {
	return string(f)
}
