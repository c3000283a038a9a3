package projector

import (
	"sort"

	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/store"
)

// state is the working projection during a fold. Issues live in a map
// keyed by issue_id and lessons in insertion order; both are emitted
// through explicit sorting rules, never map iteration order.
type state struct {
	meta    model.Meta
	project model.Project
	tasks   []model.Task
	issues  map[string]*model.Issue
	lessons []model.Lesson
}

func newState(projectName string) *state {
	return &state{
		meta: model.Meta{
			SchemaVersion: model.SchemaVersion,
			ESAAVersion:   model.ESAAVersion,
			ImmutableDone: true,
			Run: model.RunMeta{
				Status:       model.RunInitialized,
				VerifyStatus: model.VerifyUnknown,
			},
			UpdatedAt: model.UTCNow(),
		},
		project: model.Project{Name: projectName, AuditScope: store.RoadmapDir + "/"},
		tasks:   []model.Task{},
		issues:  map[string]*model.Issue{},
		lessons: []model.Lesson{},
	}
}

// Materialize folds events into the three views for the named project.
// An empty projectName selects the default.
func Materialize(events []model.Event, projectName string) (*model.Roadmap, *model.IssuesView, *model.LessonsView, error) {
	if projectName == "" {
		projectName = model.DefaultProjectName
	}
	s := newState(projectName)
	for i := range events {
		if err := s.apply(events[i]); err != nil {
			return nil, nil, nil, err
		}
	}

	roadmap := s.emitRoadmap()
	hash, err := roadmap.ProjectionHash()
	if err != nil {
		return nil, nil, nil, err
	}
	roadmap.Meta.Run.ProjectionHash = hash

	return roadmap, s.emitIssues(roadmap), s.emitLessons(roadmap), nil
}

func (s *state) emitRoadmap() *model.Roadmap {
	tasks := make([]model.Task, len(s.tasks))
	copy(tasks, s.tasks)

	roadmap := &model.Roadmap{
		Meta:    s.meta,
		Project: s.project,
		Tasks:   tasks,
		Indexes: model.Indexes{
			ByStatus: countBy(tasks, func(t model.Task) string { return t.Status }),
			ByKind:   countBy(tasks, func(t model.Task) string { return t.TaskKind }),
		},
	}
	roadmap.Meta.Run.VerifyStatus = model.NormalizeVerifyStatus(roadmap.Meta.Run.VerifyStatus)
	return roadmap
}

func (s *state) emitIssues(roadmap *model.Roadmap) *model.IssuesView {
	ids := make([]string, 0, len(s.issues))
	for id := range s.issues {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	issues := make([]model.Issue, 0, len(ids))
	openByBaseline := map[string][]string{}
	for _, id := range ids {
		issue := *s.issues[id]
		issues = append(issues, issue)
		if issue.Status != "open" {
			continue
		}
		baseline := "unknown"
		if issue.BaselineID != nil && *issue.BaselineID != "" {
			baseline = *issue.BaselineID
		}
		openByBaseline[baseline] = append(openByBaseline[baseline], issue.IssueID)
	}

	return &model.IssuesView{
		Meta: model.IssuesViewMeta{
			SchemaVersion:    model.SchemaVersion,
			ESAAVersion:      model.ESAAVersion,
			GeneratedBy:      "esaa.project",
			SourceEventStore: store.EventStorePath,
			LastEventSeq:     roadmap.Meta.Run.LastEventSeq,
			UpdatedAt:        roadmap.Meta.UpdatedAt,
		},
		Issues:  issues,
		Indexes: model.IssuesIndexes{OpenByBaseline: openByBaseline},
	}
}

func (s *state) emitLessons(roadmap *model.Roadmap) *model.LessonsView {
	lessons := make([]model.Lesson, len(s.lessons))
	copy(lessons, s.lessons)

	byTaskKind := map[string][]string{}
	byEnforcement := map[string][]string{}
	for _, lesson := range lessons {
		if kinds, ok := lesson.Scope["task_kinds"].([]any); ok {
			for _, kind := range kinds {
				if k, ok := kind.(string); ok {
					byTaskKind[k] = append(byTaskKind[k], lesson.LessonID)
				}
			}
		}
		if appliesTo, ok := lesson.Enforcement["applies_to"].(string); ok {
			byEnforcement[appliesTo] = append(byEnforcement[appliesTo], lesson.LessonID)
		}
	}

	return &model.LessonsView{
		Meta: model.LessonsViewMeta{
			SchemaVersion:    model.SchemaVersion,
			ESAAVersion:      model.ESAAVersion,
			GeneratedBy:      "esaa.project",
			SourceEventStore: store.EventStorePath,
			UpdatedAt:        roadmap.Meta.UpdatedAt,
		},
		Lessons: lessons,
		Indexes: model.LessonsIndexes{
			ByTaskKind:           byTaskKind,
			ByEnforcementApplies: byEnforcement,
		},
	}
}

func countBy(tasks []model.Task, key func(model.Task) string) map[string]int64 {
	out := map[string]int64{}
	for _, task := range tasks {
		out[key(task)]++
	}
	return out
}
