package testutil

// FixedIDGenerator returns the same request id every time.
//
// CLI output includes a request id; pinning it makes that output comparable
// byte for byte across runs.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator. If id is empty, Generate returns
// "test-request-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-request-default"
	}
	return &FixedIDGenerator{id: id}
}

func (g *FixedIDGenerator) Generate() string {
	return g.id
}
