// Package musicbrainz searches MusicBrainz recordings by title.
package musicbrainz

// recordingSearchResponse is the raw response from MusicBrainz recording search.
type recordingSearchResponse struct {
	Count      int               `json:"count"`
	Recordings []recordingResult `json:"recordings"`
}

// recordingResult is a single recording from search results.
type recordingResult struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Score  int    `json:"score"`  // Search relevance score (0-100)
	Length int    `json:"length"` // Duration in milliseconds
}
