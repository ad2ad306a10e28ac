package id

// Generator id generator, every dispatched load and drop command carries
// a cluster-unique operation id from it
type Generator interface {
	Gen() (uint64, error)
}

// NewMemGenerator returns a mem generator
func NewMemGenerator() Generator {
	return &memGenerator{}
}
