package domain

import "time"

// Snapshot is the in-memory view of one workspace's synchronized state.
// The workspace session owns the canonical snapshot; every other component
// reads an immutable copy and never mutates it directly. Mutations flow
// outward through service calls to the authoritative store and round-trip
// back through the change feed.
type Snapshot struct {
	// WorkspaceID is the scoping workspace.
	WorkspaceID string `json:"workspace_id"`

	// Decisions are the workspace's shared decisions.
	Decisions []Decision `json:"decisions"`

	// Tasks are the workspace's shared tasks.
	Tasks []Task `json:"tasks"`

	// Votes are all loaded votes. Votes reference decisions rather than
	// workspaces, so they are loaded globally and joined locally.
	Votes []Vote `json:"votes"`

	// Metrics is the last successfully computed velocity summary.
	Metrics VelocityMetrics `json:"metrics"`

	// LoadedAt is when the snapshot was last refreshed.
	LoadedAt time.Time `json:"loaded_at"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Decisions = make([]Decision, len(s.Decisions))
	for i, d := range s.Decisions {
		out.Decisions[i] = d
		out.Decisions[i].Votes = append([]Vote(nil), d.Votes...)
	}
	out.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		out.Tasks[i] = t.Clone()
	}
	out.Votes = append([]Vote(nil), s.Votes...)
	return out
}
