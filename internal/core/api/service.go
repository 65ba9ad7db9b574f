// Package api provides the gRPC rename service.
package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/renamer/internal/core/auth"
	"github.com/solatis/renamer/internal/core/config"
	"github.com/solatis/renamer/internal/core/session"
	"github.com/solatis/renamer/internal/pipeline"
	"github.com/solatis/renamer/internal/rules"
)

// PackSaver persists a pack after an exact rule was captured.
// Implemented by *db.Store.
type PackSaver interface {
	SavePack(ctx context.Context, pack *rules.Pack) error
}

// RenameService implements RenameServer.
// Thin orchestration layer delegating to the pipeline, the session cache
// and the store. The pipeline and its registry are single-threaded; every
// handler holds mu while touching them.
type RenameService struct {
	mu         sync.Mutex
	pipeline   *pipeline.Pipeline
	selections *session.Cache
	saver      PackSaver
	cfg        *config.Config
	log        logrus.FieldLogger
}

// NewRenameService creates service instance with dependencies. saver may be
// nil, in which case captured rules live in memory only.
func NewRenameService(p *pipeline.Pipeline, selections *session.Cache, saver PackSaver, cfg *config.Config, log logrus.FieldLogger) (*RenameService, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}
	if selections == nil {
		return nil, fmt.Errorf("selections cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	return &RenameService{
		pipeline:   p,
		selections: selections,
		saver:      saver,
		cfg:        cfg,
		log:        log.WithField("component", "api"),
	}, nil
}

// packFor picks the pack of a request: the explicit "pack" field, else the
// pack bound to the API key, else the configured default. A key bound to a
// pack may not address another one.
func (s *RenameService) packFor(ctx context.Context, req *structpb.Struct) (string, error) {
	requested := stringField(req, "pack")
	bound := auth.PackFromContext(ctx)
	switch {
	case bound != "" && requested != "" && requested != bound:
		return "", status.Errorf(codes.PermissionDenied, "API key is bound to pack %q", bound)
	case requested != "":
		return requested, nil
	case bound != "":
		return bound, nil
	default:
		return s.cfg.Renamer.DefaultPack, nil
	}
}
