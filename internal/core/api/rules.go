package api

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/renamer/internal/core/auth"
)

// Resolve returns the effective rule for one item.
//
// Request:  {pack?, item}
// Response: {pack, tier, rule|null}
func (s *RenameService) Resolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pack, err := s.packFor(ctx, req)
	if err != nil {
		return nil, err
	}
	item, err := decodeItem(req.GetFields()["item"])
	if err != nil {
		return nil, invalidArgument("item: %v", err)
	}

	s.mu.Lock()
	res, err := s.pipeline.Resolver().ResolveTier(pack, item)
	s.mu.Unlock()
	if err != nil {
		return nil, toStatus(err)
	}

	rule, err := encodeRule(res.Rule)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := structpb.NewStruct(map[string]any{
		"pack": pack,
		"tier": res.Tier.String(),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	out.Fields["rule"] = rule
	return out, nil
}

// CaptureExact stores an exact rule for the item the session last selected.
// A null rule removes the entry.
//
// Request:  {pack?, session, rule|null}
// Response: {pack, changed}
func (s *RenameService) CaptureExact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID := stringField(req, "session")
	if sessionID == "" {
		return nil, invalidArgument("missing session")
	}
	sel, ok := s.selections.Get(sessionID)
	if !ok {
		return nil, status.Errorf(codes.FailedPrecondition, "session %q has no selected item", sessionID)
	}
	pack, err := s.packFor(ctx, req)
	if err != nil {
		return nil, err
	}
	_, explicit := req.GetFields()["pack"]
	if bound := auth.PackFromContext(ctx); bound != "" && bound != sel.Pack {
		return nil, status.Errorf(codes.PermissionDenied, "API key is bound to pack %q", bound)
	}
	if explicit && pack != sel.Pack {
		return nil, invalidArgument("selection was made in pack %q, not %q", sel.Pack, pack)
	}
	rule, err := decodeRule(req.GetFields()["rule"])
	if err != nil {
		return nil, invalidArgument("%v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pk, err := s.pipeline.Resolver().Registry().Get(sel.Pack)
	if err != nil {
		return nil, toStatus(err)
	}
	prev, err := pk.Exact().Stored(sel.Item)
	if err != nil {
		return nil, toStatus(err)
	}
	changed, err := pk.Exact().SetRule(sel.Item, rule)
	if err != nil {
		return nil, toStatus(err)
	}
	if changed && s.saver != nil {
		saveCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.RequestTimeout)
		defer cancel()
		if err := s.saver.SavePack(saveCtx, pk); err != nil {
			// Memory never holds a capture that storage rejected.
			if _, rerr := pk.Exact().SetRule(sel.Item, prev); rerr != nil {
				s.log.WithError(rerr).WithField("pack", sel.Pack).Error("failed to revert captured rule")
			}
			return nil, toStatus(fmt.Errorf("%w: %v", errStorage, err))
		}
	}

	s.log.WithFields(logrus.Fields{
		"pack":    sel.Pack,
		"session": sessionID,
		"item":    sel.Item.String(),
		"changed": changed,
	}).Info("captured exact rule")

	return structpb.NewStruct(map[string]any{
		"pack":    sel.Pack,
		"changed": changed,
	})
}
