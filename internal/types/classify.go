package types

// ItemClassifier tells which item types wear down with use. Exact-match
// signatures for such items ignore the sub-variant, which for them counts
// durability rather than a variant.
type ItemClassifier interface {
	IsArmor(typeID int) bool
	IsTool(typeID int) bool
}

// DefaultClassifier classifies by the classic numeric item ID table.
type DefaultClassifier struct{}

// IsArmor reports helmets, chestplates, leggings and boots of every material.
func (DefaultClassifier) IsArmor(typeID int) bool {
	return typeID >= 298 && typeID <= 317
}

// IsTool reports weapons and tools that take durability damage.
func (DefaultClassifier) IsTool(typeID int) bool {
	switch {
	case typeID >= 256 && typeID <= 259: // iron shovel, pickaxe, axe; flint and steel
		return true
	case typeID == 261: // bow
		return true
	case typeID >= 267 && typeID <= 279: // iron sword through diamond axe
		return true
	case typeID >= 283 && typeID <= 286: // gold tools
		return true
	case typeID >= 290 && typeID <= 294: // hoes
		return true
	case typeID == 346, typeID == 359, typeID == 398: // fishing rod, shears, carrot on a stick
		return true
	}
	return false
}

// Wears reports whether the classifier treats the type as armor or tool.
func Wears(c ItemClassifier, typeID int) bool {
	return c.IsArmor(typeID) || c.IsTool(typeID)
}
