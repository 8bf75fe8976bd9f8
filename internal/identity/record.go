// SPDX-License-Identifier: MPL-2.0

package identity

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	BehaviorHeader       Slot = "behavior-header"
	BehaviorDataModule   Slot = "behavior-data-module"
	BehaviorScriptModule Slot = "behavior-script-module"
	ResourceHeader       Slot = "resource-header"
	ResourceModule       Slot = "resource-module"
)

// ErrMissingSlot is returned when a record lacks a required slot.
var ErrMissingSlot = errors.New("identity slot missing")

type (
	// Slot names a stable position that owns a persistent identifier.
	Slot string

	// Record maps every slot to its identifier.
	Record map[Slot]uuid.UUID

	// fileRecord is the on-disk layout, grouped per pack.
	fileRecord struct {
		BP behaviorIDs `json:"BP"`
		RP resourceIDs `json:"RP"`
	}

	behaviorIDs struct {
		Header string `json:"header"`
		Data   string `json:"data"`
		Script string `json:"script"`
	}

	resourceIDs struct {
		Header    string `json:"header"`
		Resources string `json:"resources"`
	}
)

// Slots returns the fixed slot set in a stable order.
func Slots() []Slot {
	return []Slot{
		BehaviorHeader,
		BehaviorDataModule,
		BehaviorScriptModule,
		ResourceHeader,
		ResourceModule,
	}
}

// Get returns the identifier of slot.
func (r Record) Get(slot Slot) (uuid.UUID, error) {
	id, ok := r[slot]
	if !ok || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrMissingSlot, slot)
	}
	return id, nil
}

// Validate checks that every slot holds a non-nil identifier.
func (r Record) Validate() error {
	var errs []error
	for _, slot := range Slots() {
		if _, err := r.Get(slot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRecord returns a fresh random record that is not persisted anywhere.
func NewRecord() (Record, error) {
	return generate(uuid.NewRandom)
}

// generate creates a fresh record with one identifier per slot.
func generate(newID func() (uuid.UUID, error)) (Record, error) {
	record := make(Record, len(Slots()))
	for _, slot := range Slots() {
		id, err := newID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate identifier for %s: %w", slot, err)
		}
		record[slot] = id
	}
	return record, nil
}

func (r Record) toFile() fileRecord {
	return fileRecord{
		BP: behaviorIDs{
			Header: r[BehaviorHeader].String(),
			Data:   r[BehaviorDataModule].String(),
			Script: r[BehaviorScriptModule].String(),
		},
		RP: resourceIDs{
			Header:    r[ResourceHeader].String(),
			Resources: r[ResourceModule].String(),
		},
	}
}

func (f fileRecord) toRecord() (Record, error) {
	raw := map[Slot]string{
		BehaviorHeader:       f.BP.Header,
		BehaviorDataModule:   f.BP.Data,
		BehaviorScriptModule: f.BP.Script,
		ResourceHeader:       f.RP.Header,
		ResourceModule:       f.RP.Resources,
	}

	record := make(Record, len(raw))
	for slot, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", slot, err)
		}
		record[slot] = id
	}
	return record, record.Validate()
}
