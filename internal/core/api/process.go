package api

import (
	"context"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/renamer/internal/pipeline"
)

// Process renames a snapshot of slots.
//
// Request:  {pack?, offset?, slots: [item|null], session?, selected?}
// Response: {snapshot, pack, slots, states, tiers}
//
// When session and selected are set, the selected slot's item as sent is
// remembered for a later CaptureExact.
func (s *RenameService) Process(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pack, err := s.packFor(ctx, req)
	if err != nil {
		return nil, err
	}
	items, err := decodeSlots(req, "slots")
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	if len(items) > s.cfg.Server.MaxSnapshotSlots {
		return nil, invalidArgument("snapshot has %d slots, maximum is %d", len(items), s.cfg.Server.MaxSnapshotSlots)
	}
	offset, err := intField(req, "offset", false)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}

	sessionID := stringField(req, "session")
	if sessionID != "" {
		if _, ok := req.GetFields()["selected"]; ok {
			selected, err := intField(req, "selected", true)
			if err != nil {
				return nil, invalidArgument("%v", err)
			}
			if selected < 0 || selected >= len(items) {
				return nil, invalidArgument("selected slot %d outside snapshot of %d", selected, len(items))
			}
			if items[selected] != nil {
				s.selections.Set(sessionID, pack, items[selected])
			}
		}
	}

	s.mu.Lock()
	res, err := s.pipeline.Process(pack, pipeline.NewSnapshot(items, offset))
	s.mu.Unlock()
	if err != nil {
		s.log.WithError(err).WithField("pack", pack).Warn("process failed")
		return nil, toStatus(err)
	}

	slots, err := encodeSlots(res.Items)
	if err != nil {
		return nil, toStatus(err)
	}
	states := make([]any, len(res.States))
	tiers := make([]any, len(res.Tiers))
	for i := range res.States {
		states[i] = res.States[i].String()
		tiers[i] = res.Tiers[i].String()
	}

	out, err := structpb.NewStruct(map[string]any{
		"snapshot": string(res.Snapshot),
		"pack":     res.Pack,
		"states":   states,
		"tiers":    tiers,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	out.Fields["slots"] = slots

	s.log.WithFields(logrus.Fields{
		"pack":     res.Pack,
		"snapshot": res.Snapshot,
		"written":  res.Count(pipeline.StateWritten),
	}).Debug("process")
	return out, nil
}

// Unprocess restores stashed originals.
//
// Request:  {slots: [item|null]}
// Response: {slots, restored}
func (s *RenameService) Unprocess(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	items, err := decodeSlots(req, "slots")
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	if len(items) > s.cfg.Server.MaxSnapshotSlots {
		return nil, invalidArgument("snapshot has %d slots, maximum is %d", len(items), s.cfg.Server.MaxSnapshotSlots)
	}

	restored, err := s.pipeline.UnprocessAll(items)
	if err != nil {
		return nil, toStatus(err)
	}

	slots, err := encodeSlots(items)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := structpb.NewStruct(map[string]any{"restored": restored})
	if err != nil {
		return nil, toStatus(err)
	}
	out.Fields["slots"] = slots
	return out, nil
}
