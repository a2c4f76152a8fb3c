package commands

import (
	"errors"

	"routing/internal/core/domain/model/profile"
	"routing/internal/pkg/errs"
	"routing/internal/pkg/guard"
)

var ErrRunGenerationCommandIsNotConstructed = errors.New(
	"RunGenerationCommand must be created via NewRunGenerationCommand constructor")

// RunGenerationCommand requests a full generation run: one shared graph
// export followed by a compile for every profile variant.
type RunGenerationCommand struct {
	variants []profile.Variant

	guard guard.ConstructorGuard
}

// NewRunGenerationCommand creates a command compiling the given variants.
// The variant set must be non-empty.
func NewRunGenerationCommand(variants []profile.Variant) (RunGenerationCommand, error) {
	if len(variants) == 0 {
		return RunGenerationCommand{}, errs.NewValueIsRequiredError("variants")
	}
	return RunGenerationCommand{
		variants: variants,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c RunGenerationCommand) Variants() []profile.Variant {
	return c.variants
}

// Validate ensures the command was created through the constructor.
func (c RunGenerationCommand) Validate() error {
	return c.guard.Validate(ErrRunGenerationCommandIsNotConstructed)
}
