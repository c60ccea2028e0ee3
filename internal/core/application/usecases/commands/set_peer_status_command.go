package commands

import (
	"errors"
	"fmt"
	"strings"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
	"manifest/internal/pkg/guard"
)

var ErrSetPeerStatusCommandIsNotConstructed = errors.New(
	"SetPeerStatusCommand must be created via NewSetPeerStatusCommand constructor",
)

// SetPeerStatusCommand moves an item to picked_up, held, returned or handed_over.
type SetPeerStatusCommand struct { //nolint:recvcheck //using for validation
	itemID kernel.UUID
	status item.Status
	note   string

	guard guard.ConstructorGuard
}

// NewSetPeerStatusCommand rejects every target that is not a peer status,
// Delivered included.
func NewSetPeerStatusCommand(itemID kernel.UUID, status item.Status, note string) (SetPeerStatusCommand, error) {
	c := SetPeerStatusCommand{note: strings.TrimSpace(note), guard: guard.NewConstructorGuard()}

	if err := errors.Join(c.setItemID(itemID), c.setStatus(status)); err != nil {
		return SetPeerStatusCommand{}, err
	}
	return c, nil
}

// Validate ensures the command was created through the constructor.
func (c SetPeerStatusCommand) Validate() error {
	return c.guard.Validate(ErrSetPeerStatusCommandIsNotConstructed)
}

func (c SetPeerStatusCommand) ItemID() kernel.UUID { return c.itemID }
func (c SetPeerStatusCommand) Status() item.Status { return c.status }
func (c SetPeerStatusCommand) Note() string        { return c.note }

func (c *SetPeerStatusCommand) setItemID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.itemID = id
	return nil
}

func (c *SetPeerStatusCommand) setStatus(s item.Status) error {
	if !s.IsPeer() {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%s cannot be set directly", s))
	}
	c.status = s
	return nil
}
