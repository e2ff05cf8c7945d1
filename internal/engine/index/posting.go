package index

// Posting links a term to a document and the term's raw occurrence count in
// that document.
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"frequency"`
}

// PostingList is an insertion-ordered list of postings for a single term.
// Document ids within a list are unique.
type PostingList []Posting

// TermEntry pairs a term with its postings for index snapshots.
type TermEntry struct {
	Term     string      `json:"term"`
	Postings PostingList `json:"postings"`
}
