package control

// ProgramStore is the read-mostly boundary to the import pipeline's
// program metadata. The core loads programs read-only; Put exists so the
// pipeline can hand over import results through the same seam.
type ProgramStore interface {
	// Get returns the program with the given ID, or ErrProgramNotFound.
	Get(id ProgramID) (*Program, error)

	// Put stores or replaces a program's metadata.
	Put(p *Program) error

	// List returns all known programs in insertion order.
	List() []*Program
}
