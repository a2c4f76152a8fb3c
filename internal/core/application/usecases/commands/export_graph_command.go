package commands

import (
	"errors"

	"routing/internal/pkg/guard"
)

var ErrExportGraphCommandIsNotConstructed = errors.New(
	"ExportGraphCommand must be created via NewExportGraphCommand constructor")

// ExportGraphCommand requests a standalone graph extraction: load the road
// network, derive weights, and write the shared interchange document without
// compiling any variant.
type ExportGraphCommand struct {
	guard guard.ConstructorGuard
}

// NewExportGraphCommand creates a command to export the routing graph.
func NewExportGraphCommand() ExportGraphCommand {
	return ExportGraphCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c ExportGraphCommand) Validate() error {
	return c.guard.Validate(ErrExportGraphCommandIsNotConstructed)
}
