package commands

import (
	"errors"
	"strings"

	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/guard"
)

var ErrMarkAbsentCommandIsNotConstructed = errors.New(
	"MarkAbsentCommand must be created via NewMarkAbsentCommand constructor",
)

// MarkAbsentCommand records a failed attempt with an optional redelivery hint and note.
type MarkAbsentCommand struct { //nolint:recvcheck //using for validation
	itemID       kernel.UUID
	redeliveryAt string
	note         string

	guard guard.ConstructorGuard
}

// NewMarkAbsentCommand validates the id. The hint and note may be empty.
func NewMarkAbsentCommand(itemID kernel.UUID, redeliveryAt, note string) (MarkAbsentCommand, error) {
	if err := itemID.Validate(); err != nil {
		return MarkAbsentCommand{}, err
	}
	return MarkAbsentCommand{
		itemID:       itemID,
		redeliveryAt: strings.TrimSpace(redeliveryAt),
		note:         strings.TrimSpace(note),
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c MarkAbsentCommand) Validate() error {
	return c.guard.Validate(ErrMarkAbsentCommandIsNotConstructed)
}

func (c MarkAbsentCommand) ItemID() kernel.UUID  { return c.itemID }
func (c MarkAbsentCommand) RedeliveryAt() string { return c.redeliveryAt }
func (c MarkAbsentCommand) Note() string         { return c.note }
