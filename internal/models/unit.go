package models

import (
	"time"

	"github.com/google/uuid"
)

type UnitOfMeasure struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Symbol    *string   `json:"symbol" db:"symbol"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UnitRefKind tags the three ways a product can reference its unit of
// measure: by catalog id, by legacy name, or not at all.
type UnitRefKind int

const (
	UnitRefNone UnitRefKind = iota
	UnitRefByID
	UnitRefByName
)

// UnitRef is the tagged union resolved by the units package. Build it
// through the constructors; the zero value means "no unit assigned".
type UnitRef struct {
	Kind UnitRefKind
	ID   uuid.UUID
	Name string
}

func UnitByID(id uuid.UUID) UnitRef {
	return UnitRef{Kind: UnitRefByID, ID: id}
}

func UnitByName(name string) UnitRef {
	return UnitRef{Kind: UnitRefByName, Name: name}
}

func NoUnit() UnitRef {
	return UnitRef{Kind: UnitRefNone}
}

// ResolvedUnit is what the resolver hands back: a concrete unit with a
// display symbol that is always populated.
type ResolvedUnit struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Symbol string    `json:"symbol"`
}
