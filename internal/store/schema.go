package store

// Collection names, used in change-bus events and search results.
const (
	CollectionTasks       = "tasks"
	CollectionContents    = "contents"
	CollectionEvents      = "events"
	CollectionTeam        = "team_members"
	CollectionApprovals   = "approvals"
	CollectionActivities  = "activities"
	CollectionAssignments = "cron_assignments"
)

// Task statuses.
const (
	TaskTodo  = "todo"
	TaskDoing = "doing"
	TaskDone  = "done"
)

// Task assignees.
const (
	AssigneeHuman = "human"
	AssigneeAI    = "ai"
)

// Content platforms.
const (
	PlatformTikTok = "tiktok"
	Platform2XKO   = "2xko"
	PlatformOther  = "other"
)

// Content pipeline stages, in production order.
const (
	StageIdea      = "idea"
	StageDraft     = "draft"
	StageThumbnail = "thumbnail"
	StageReady     = "ready"
	StagePosted    = "posted"
)

// Event sources. Cron-sourced events are owned by the cron mirror and keyed
// by (title, source).
const (
	SourceManual = "manual"
	SourceCron   = "openclaw-cron"
)

// Team member statuses.
const (
	MemberIdle    = "idle"
	MemberWorking = "working"
	MemberBlocked = "blocked"
	MemberOffline = "offline"
)

// Approval statuses. Any status is reachable from any status.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
	ApprovalTimeout  = "timeout"
)

// Activity levels.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Task is a board item on the task dashboard.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Assignee  string `json:"assignee"`
	CreatedAt int64  `json:"createdAt"`
}

// ContentItem is an item in the content production pipeline.
type ContentItem struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Platform          string `json:"platform"`
	Stage             string `json:"stage"`
	Memo              string `json:"memo,omitempty"`
	SourcePath        string `json:"sourcePath,omitempty"`
	FactChecked       bool   `json:"factChecked"`
	CtaChecked        bool   `json:"ctaChecked"`
	PostedChecked     bool   `json:"postedChecked"`
	PublishedURL      string `json:"publishedUrl,omitempty"`
	DiscordMessageURL string `json:"discordMessageUrl,omitempty"`
	DiscordMessageID  string `json:"discordMessageId,omitempty"`
	CreatedAt         int64  `json:"createdAt"`
}

// Event is a calendar entry, either manual or mirrored from the external
// scheduler. Enabled/NextRunAtMs stay nil for events that never carried them.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Schedule    string `json:"schedule"`
	Source      string `json:"source"`
	Enabled     *bool  `json:"enabled,omitempty"`
	NextRunAtMs *int64 `json:"nextRunAtMs,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// TeamMember is a roster entry. OwnsKeywords is a comma-separated keyword
// list used for best-effort cron-job ownership inference.
type TeamMember struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	Focus        string `json:"focus,omitempty"`
	OwnsKeywords string `json:"ownsKeywords,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
}

// Approval is an entry in the approvals queue.
type Approval struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Source    string `json:"source,omitempty"`
	Note      string `json:"note,omitempty"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Activity is an append-only log entry.
type Activity struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	Level     string `json:"level"`
	CreatedAt int64  `json:"createdAt"`
}

// CronAssignment maps an external scheduler job name to a team member.
// MemberID is a weak reference: deleting the member leaves a dangling id that
// views resolve to "unassigned".
type CronAssignment struct {
	ID        string `json:"id"`
	JobName   string `json:"jobName"`
	MemberID  string `json:"memberId"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Schema contains the sqlite DDL for all collections.
const Schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'todo',
	assignee TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

CREATE TABLE IF NOT EXISTS contents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	platform TEXT NOT NULL,
	stage TEXT NOT NULL,
	memo TEXT NOT NULL DEFAULT '',
	source_path TEXT NOT NULL DEFAULT '',
	fact_checked INTEGER NOT NULL DEFAULT 0,
	cta_checked INTEGER NOT NULL DEFAULT 0,
	posted_checked INTEGER NOT NULL DEFAULT 0,
	published_url TEXT NOT NULL DEFAULT '',
	discord_message_url TEXT NOT NULL DEFAULT '',
	discord_message_id TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contents_stage ON contents(stage);
CREATE INDEX IF NOT EXISTS idx_contents_source_path ON contents(source_path);

CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	schedule TEXT NOT NULL,
	source TEXT NOT NULL,
	enabled INTEGER,
	next_run_at_ms INTEGER,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_source ON events(source);

CREATE TABLE IF NOT EXISTS team_members (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	role TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'idle',
	focus TEXT NOT NULL DEFAULT '',
	owns_keywords TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS approvals (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_approvals_status ON approvals(status);

CREATE TABLE IF NOT EXISTS activities (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	message TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	level TEXT NOT NULL DEFAULT 'info',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_created ON activities(created_at);

CREATE TABLE IF NOT EXISTS cron_assignments (
	id TEXT PRIMARY KEY,
	job_name TEXT UNIQUE NOT NULL,
	member_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`
