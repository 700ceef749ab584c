package domain

// Passage is the unit of retrieval and grounding: a contiguous slice of
// extracted document text. Passages are immutable once created and ordered by
// Seq within their library; the order is the tie-break authority for
// equal-distance query results.
type Passage struct {
	// Seq is the passage's position in the library's ordered sequence.
	Seq int
	// Source is the original filename of the document the passage came from.
	Source string
	// Start and End are character offsets into the extracted document text.
	Start int
	End   int
	// Text is the passage content.
	Text string
}

// Upload is a raw uploaded document: verbatim bytes plus the original
// filename. Consumed by the ingestion pipeline and persisted under the
// library namespace for later download.
type Upload struct {
	Filename string
	Data     []byte
}

// ExtractedDocument is one document's ordered per-page texts, produced by the
// text extraction collaborator.
type ExtractedDocument struct {
	Filename string
	Pages    []string
}
