package history

import "time"

const SchemaVersion = 1

type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Run summarises one extraction run. Counts describe the frozen model and
// the artifacts written from it.
type Run struct {
	ID            string        `json:"id"`
	ProjectKey    string        `json:"project_key"`
	SchemaVersion int           `json:"schema_version"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Status        Status        `json:"status"`

	Units        int `json:"units"`
	FailedUnits  int `json:"failed_units"`
	SyntaxErrors int `json:"syntax_errors"`

	Classes         int `json:"classes"`
	Namespaces      int `json:"namespaces"`
	Attributes      int `json:"attributes"`
	Methods         int `json:"methods"`
	ResolvedParents int `json:"resolved_parents"`
	DistantParents  int `json:"distant_parents"`

	Artifacts       int `json:"artifacts"`
	FailedArtifacts int `json:"failed_artifacts"`
}

// Delta is the change in model size between two runs.
type Delta struct {
	Classes        int
	Namespaces     int
	Attributes     int
	Methods        int
	DistantParents int
}

// Compare returns cur minus prev.
func Compare(prev, cur Run) Delta {
	return Delta{
		Classes:        cur.Classes - prev.Classes,
		Namespaces:     cur.Namespaces - prev.Namespaces,
		Attributes:     cur.Attributes - prev.Attributes,
		Methods:        cur.Methods - prev.Methods,
		DistantParents: cur.DistantParents - prev.DistantParents,
	}
}
