package editor

import (
	"github.com/google/uuid"

	"github.com/edsfield/edsbackend/models"
)

// Catalog is the read-only reference data the editor consults. The store
// implements it.
type Catalog interface {
	FuelType(id uuid.UUID) (models.FuelType, bool)
}

// ApplyFuelSelection unions the fuel's derived tags into the leaf's tag set
// and into the owning parent's tag set. Re-selecting the same fuel is a
// no-op. Derived tags are never removed when the selection later changes:
// the line keeps the history of every product ever assigned to it.
func ApplyFuelSelection(leaf, parent *models.TagSet, fuel models.FuelType) {
	leaf.Union(fuel.Tags)
	parent.Union(fuel.Tags)
}
