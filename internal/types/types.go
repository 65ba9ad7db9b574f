// Package types provides the item model and error taxonomy shared across
// renamer components.
//
// Items are plain values: a numeric type, a sub-variant ("damage"), a stack
// amount and an opaque extra-data compound. Display name, lore and
// enchantments live inside the extra data at fixed keys, mirroring how game
// clients serialize them, so a structural copy of an item is also a complete
// record of everything a rename rule can touch.
package types

// Limits on item identities.
const (
	// MaxSubVariant is the largest sub-variant key a range table accepts.
	// Sub-variants are unsigned 16-bit values on the wire.
	MaxSubVariant = 1<<16 - 1

	// AirTypeID is the type of an empty slot in raw inventories.
	AirTypeID = 0
)

// Reserved extra-data keys.
const (
	KeyDisplay      = "display"
	KeyName         = "Name"
	KeyLore         = "Lore"
	KeyEnchantments = "ench"
	KeyEnchantID    = "id"
	KeyEnchantLevel = "lvl"
	KeyRepairCost   = "RepairCost"
)
