package commands

import (
	"errors"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/pkg/guard"
)

var ErrAddItemCommandIsNotConstructed = errors.New(
	"AddItemCommand must be created via NewAddItemCommand constructor",
)

// AddItemCommand registers a parcel from manual entry or a scan.
//
// Example:
//
//	cmd, err := NewAddItemCommand(item.Candidate{Source: item.SourceScan, Code: "1234-5678-9012"})
//	if err != nil {
//	    return err
//	}
//	id, err := handler.Handle(ctx, cmd)
type AddItemCommand struct { //nolint:recvcheck //using for validation
	candidate item.Candidate

	guard guard.ConstructorGuard
}

// NewAddItemCommand validates the candidate with the registration rules of its source.
func NewAddItemCommand(candidate item.Candidate) (AddItemCommand, error) {
	if err := candidate.Validate(); err != nil {
		return AddItemCommand{}, err
	}
	return AddItemCommand{candidate: candidate, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c AddItemCommand) Validate() error {
	return c.guard.Validate(ErrAddItemCommandIsNotConstructed)
}

// Candidate returns the fields to register.
func (c AddItemCommand) Candidate() item.Candidate {
	return c.candidate
}
