package data

import "fmt"

// Block is one immutable data snapshot, typically a time step or a tile.
// Its pointer is its identity: caches key derived resources by *Block.
type Block struct {
	structure *Component
	root      Datum
}

// NewBlock wraps root as a block of the given structure.
// The shape is not checked here; indexers validate it when they bind the block.
func NewBlock(structure *Component, root Datum) *Block {
	return &Block{structure: structure, root: root}
}

func (b *Block) Structure() *Component { return b.structure }

// Root returns the value tree. Callers must not modify it.
func (b *Block) Root() *Datum { return &b.root }

// Validate checks the block value against its own structure.
func (b *Block) Validate() error {
	if b.structure == nil {
		return fmt.Errorf("%w: block has no structure", ErrStructureMismatch)
	}
	return Validate(b.structure, b.root)
}
