package service

import (
	"strconv"
	"strings"

	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/projector"
	"github.com/roach88/esaa/internal/store"
)

// Project re-materializes all views from the full log and rewrites them.
func (s *Service) Project() (*ProjectResult, error) {
	events, err := store.Parse(s.root)
	if err != nil {
		return nil, err
	}
	roadmap, issues, lessons, err := projector.Materialize(events, "")
	if err != nil {
		return nil, err
	}
	if err := s.saveViews(roadmap, issues, lessons); err != nil {
		return nil, err
	}
	return &ProjectResult{
		LastEventSeq:   roadmap.Meta.Run.LastEventSeq,
		ProjectionHash: roadmap.Meta.Run.ProjectionHash,
		Tasks:          len(roadmap.Tasks),
		Issues:         len(issues.Issues),
		Lessons:        len(lessons.Lessons),
	}, nil
}

// Verify re-derives the projection from the log and compares it with
// the stored roadmap snapshot. It never returns a corruption error:
// corruption is itself a verify outcome.
func (s *Service) Verify() (*VerifyResult, error) {
	events, err := store.Parse(s.root)
	if err == nil {
		var projected *model.Roadmap
		projected, _, _, err = projector.Materialize(events, "")
		if err == nil {
			return s.compareStored(projected)
		}
	}
	if model.IsCorrupt(err) {
		return &VerifyResult{
			VerifyStatus: model.VerifyCorrupted,
			ErrorCode:    model.CodeOf(err),
			ErrorMessage: model.MessageOf(err),
		}, nil
	}
	return nil, err
}

func (s *Service) compareStored(projected *model.Roadmap) (*VerifyResult, error) {
	computedSeq := projected.Meta.Run.LastEventSeq
	computedHash := projected.Meta.Run.ProjectionHash

	stored, err := store.LoadRoadmap(s.root)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return &VerifyResult{
			VerifyStatus:   model.VerifyMismatch,
			Reason:         "roadmap_missing",
			LastEventSeq:   &computedSeq,
			ProjectionHash: &computedHash,
		}, nil
	}

	storedSeq := stored.Meta.Run.LastEventSeq
	storedHash := stored.Meta.Run.ProjectionHash
	if computedHash == storedHash && computedSeq == storedSeq {
		return &VerifyResult{
			VerifyStatus:   model.VerifyOK,
			LastEventSeq:   &computedSeq,
			ProjectionHash: &computedHash,
		}, nil
	}
	return &VerifyResult{
		VerifyStatus:         model.VerifyMismatch,
		LastEventSeq:         &computedSeq,
		ProjectionHash:       &computedHash,
		StoredLastEventSeq:   &storedSeq,
		StoredProjectionHash: &storedHash,
	}, nil
}

// Replay folds a prefix of the log. An all-digits until is a sequence
// limit (inclusive); anything else is an event id and replay stops
// after it; empty replays everything. writeViews controls whether the
// replayed projection overwrites the stored views.
func (s *Service) Replay(until string, writeViews bool) (*ReplayResult, error) {
	events, err := store.Parse(s.root)
	if err != nil {
		return nil, err
	}

	selected := events
	if until != "" {
		if isDigits(until) {
			limit, err := strconv.ParseInt(until, 10, 64)
			if err != nil {
				return nil, model.Newf(model.CodeInvalidArgument, "invalid replay limit: %s", until)
			}
			selected = nil
			for _, event := range events {
				if event.EventSeq <= limit {
					selected = append(selected, event)
				}
			}
		} else {
			selected = nil
			for _, event := range events {
				selected = append(selected, event)
				if event.EventID == until {
					break
				}
			}
		}
	}

	roadmap, issues, lessons, err := projector.Materialize(selected, "")
	if err != nil {
		return nil, err
	}
	if writeViews {
		if err := s.saveViews(roadmap, issues, lessons); err != nil {
			return nil, err
		}
	}
	return &ReplayResult{
		EventsReplayed: len(selected),
		LastEventSeq:   roadmap.Meta.Run.LastEventSeq,
		ProjectionHash: roadmap.Meta.Run.ProjectionHash,
		VerifyStatus:   model.VerifyOK,
	}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) == -1
}
