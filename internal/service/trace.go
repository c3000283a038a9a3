package service

import (
	"context"

	"github.com/roach88/esaa/internal/index"
	"github.com/roach88/esaa/internal/model"
)

// Trace rebuilds the derived SQLite index from the log and queries it.
// Exactly one of taskID, actor or action selects the filter.
func (s *Service) Trace(ctx context.Context, taskID, actor, action string) (*TraceResult, error) {
	set := 0
	for _, v := range []string{taskID, actor, action} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, model.New(model.CodeInvalidArgument, "trace needs exactly one of --task, --actor, --action")
	}

	ix, indexed, err := index.RebuildFromStore(ctx, s.root)
	if err != nil {
		return nil, err
	}
	defer ix.Close()

	var entries []index.Entry
	switch {
	case taskID != "":
		entries, err = ix.ByTask(ctx, taskID)
	case actor != "":
		entries, err = ix.ByActor(ctx, actor)
	default:
		entries, err = ix.ByAction(ctx, action)
	}
	if err != nil {
		return nil, err
	}
	return &TraceResult{Indexed: indexed, Matches: len(entries), Events: entries}, nil
}
