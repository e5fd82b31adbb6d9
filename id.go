package paylater

import "github.com/xraph/paylater/id"

// ID is the primary identifier type for all PayLater entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
