package valueobjects

// Provenance records where a record's content came from
type Provenance string

const (
	// ProvenanceLive is content produced by the capture service or the
	// completion endpoint during this request.
	ProvenanceLive Provenance = "live"
	// ProvenanceDatabase is content read back from the document store.
	ProvenanceDatabase Provenance = "database"
	// ProvenanceMock is synthetic fallback or sample content.
	ProvenanceMock Provenance = "mock"
)

func (p Provenance) String() string {
	return string(p)
}

// IsMock reports whether the content is synthetic
func (p Provenance) IsMock() bool {
	return p == ProvenanceMock
}
