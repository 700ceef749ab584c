package domain

// Manifest is the published record of a library. Its presence in storage marks
// the library as fully built; it is written last during publication.
type Manifest struct {
	ID           string   `json:"id"`
	CreatedAt    int64    `json:"created_at"` // unix millis
	Model        string   `json:"model"`
	Dimensions   int      `json:"dimensions"`
	PassageCount int      `json:"passage_count"`
	Documents    []string `json:"documents"` // original filenames, upload order
}
