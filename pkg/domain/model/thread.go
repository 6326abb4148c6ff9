package model

import (
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// AddMessage appends a message from actor to the conversation thread. The
// thread is append only.
func AddMessage(x *Intervention, actor Actor, text string, photos []string, now time.Time) (*Intervention, error) {
	text = strings.TrimSpace(text)
	photos = slices.DeleteFunc(slices.Clone(photos), func(p string) bool {
		return strings.TrimSpace(p) == ""
	})
	if text == "" && len(photos) == 0 {
		return nil, goerr.Wrap(ErrInvalidField, "message needs text or a photo",
			goerr.V(FieldKey, "messages"))
	}

	updated := x.Copy()
	updated.Messages = append(updated.Messages, Message{
		SenderID:  actor.ID,
		Text:      text,
		Photos:    photos,
		Timestamp: now,
	})
	updated.UpdatedAt = now
	updated.UpdatedBy = actor.ID
	return updated, nil
}

// SetSupplies replaces the supplies the technician needs
func SetSupplies(x *Intervention, actor Actor, supplies []Supply, now time.Time) (*Intervention, error) {
	for i, s := range supplies {
		if strings.TrimSpace(s.Name) == "" {
			return nil, goerr.Wrap(ErrInvalidField, "supply name is required",
				goerr.V(FieldKey, "suppliesNeeded"), goerr.V("index", i))
		}
		if s.Quantity <= 0 {
			return nil, goerr.Wrap(ErrInvalidField, "supply quantity must be positive",
				goerr.V(FieldKey, "suppliesNeeded"), goerr.V("index", i), goerr.V("quantity", s.Quantity))
		}
	}

	updated := x.Copy()
	updated.SuppliesNeeded = slices.Clone(supplies)
	updated.UpdatedAt = now
	updated.UpdatedBy = actor.ID
	return updated, nil
}

// MarkSupplyOrdered flags the supply at index as ordered
func MarkSupplyOrdered(x *Intervention, actor Actor, index int, now time.Time) (*Intervention, error) {
	if index < 0 || index >= len(x.SuppliesNeeded) {
		return nil, goerr.Wrap(ErrInvalidField, "no supply at index",
			goerr.V(FieldKey, "suppliesNeeded"), goerr.V("index", index))
	}

	updated := x.Copy()
	updated.SuppliesNeeded[index].Ordered = true
	updated.UpdatedAt = now
	updated.UpdatedBy = actor.ID
	return updated, nil
}
