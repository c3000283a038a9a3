package store

// Filesystem layout under the project root.
const (
	RoadmapDir     = ".roadmap"
	EventStorePath = ".roadmap/activity.jsonl"
	RoadmapPath    = ".roadmap/roadmap.json"
	IssuesPath     = ".roadmap/issues.json"
	LessonsPath    = ".roadmap/lessons.json"

	RoadmapSchemaPath     = ".roadmap/roadmap.schema.json"
	AgentResultSchemaPath = ".roadmap/agent_result.schema.json"
	AgentContractPath     = ".roadmap/AGENT_CONTRACT.yaml"

	InboxDir         = ".roadmap/inbox"
	InboxDoneDir     = ".roadmap/inbox/done"
	InboxRejectedDir = ".roadmap/inbox/rejected"
)
