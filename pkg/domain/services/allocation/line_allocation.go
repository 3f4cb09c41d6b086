package allocation

import "github.com/vsinha/picklist/pkg/domain/entities"

// LineAllocation is what a line allocator produced for one requested line.
// Rows carry warehouse, quantities and tracking ids only; the engine attaches line metadata.
type LineAllocation struct {
	Rows     []entities.AllocationRow
	Shortage *entities.ShortageNotice
}
