package types

import "errors"

// Sentinel errors for renamer operations.
//
// Configuration errors are returned to the caller of the offending API.
// Invariant violations abort the current process/unprocess call.
var (
	// ErrUnknownPack indicates a rule pack name that is not registered.
	ErrUnknownPack = errors.New("unknown rule pack")

	// ErrDuplicatePack indicates an attempt to create a pack that already exists.
	ErrDuplicatePack = errors.New("rule pack already exists")

	// ErrInvalidRange indicates a sub-variant range outside [0, MaxSubVariant] or with low > high.
	ErrInvalidRange = errors.New("invalid sub-variant range")

	// ErrInvalidSignature indicates an item that cannot serve as an exact-match key.
	ErrInvalidSignature = errors.New("invalid item signature")

	// ErrInvalidPriority indicates an unknown listener priority tier.
	ErrInvalidPriority = errors.New("invalid listener priority")

	// ErrSelfRegistration indicates a third-party registration using the pipeline's own owner.
	ErrSelfRegistration = errors.New("owner is reserved for the rename pipeline")

	// ErrItemDestroyed indicates a slot that was non-empty before processing became empty.
	ErrItemDestroyed = errors.New("item destroyed during processing")

	// ErrCorruptStash indicates a stashed pre-image that cannot be decoded.
	ErrCorruptStash = errors.New("stashed original is corrupt")

	// ErrRenameFailed indicates the pipeline's own rename step failed.
	ErrRenameFailed = errors.New("rename step failed")

	// ErrSlotOutOfRange indicates a snapshot slot index outside the snapshot.
	ErrSlotOutOfRange = errors.New("slot index out of range")
)
