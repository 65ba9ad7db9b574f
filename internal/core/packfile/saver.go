package packfile

import (
	"context"
	"sync"

	"github.com/solatis/renamer/internal/rules"
)

// Saver persists pack changes by rewriting the whole pack file. It serves
// as the rename service's PackSaver when no database is configured.
type Saver struct {
	mu   sync.Mutex
	path string
	reg  *rules.Registry
}

// NewSaver returns a saver writing every pack of reg to path.
func NewSaver(path string, reg *rules.Registry) *Saver {
	return &Saver{path: path, reg: reg}
}

// SavePack rewrites the file. The pack must belong to the saver's registry.
func (s *Saver) SavePack(ctx context.Context, pack *rules.Pack) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Save(s.path, s.reg)
}
