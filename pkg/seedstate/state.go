// Package seedstate holds the versioned metadata the import pipeline keeps
// about the catalog: what was last imported, from where, how it went, and a
// short audit trail of recent runs.
//
// The state is one value persisted under a single meta key, written in the
// same transaction as the catalog changes it describes.
package seedstate

import (
	"encoding/json"
	"fmt"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/mohae/deepcopy"

	"github.com/agentstation/liftmap/pkg/constants"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/validate"
)

// Status is the outcome of the last run.
type Status string

// Run statuses.
const (
	StatusNone        Status = ""
	StatusSuccess     Status = "SUCCESS"
	StatusFailure     Status = "FAILURE"
	StatusStarterOnly Status = "STARTER_ONLY"
	StatusSkipped     Status = "SKIPPED"
)

// String returns the string representation of a status.
func (s Status) String() string {
	return string(s)
}

// RunStats are the counters of one run.
type RunStats struct {
	Fetched    int `json:"fetched" yaml:"fetched"`
	Valid      int `json:"valid" yaml:"valid"`
	Invalid    int `json:"invalid" yaml:"invalid"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
	Inserted   int `json:"inserted" yaml:"inserted"`
	Updated    int `json:"updated" yaml:"updated"`
	Skipped    int `json:"skipped" yaml:"skipped"`
	UserOwned  int `json:"user_owned" yaml:"user_owned"`
	Unmatched  int `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`
	Swept      int `json:"swept,omitempty" yaml:"swept,omitempty"`
	Equipment  int `json:"equipment_created" yaml:"equipment_created"`
	Linked     int `json:"linked" yaml:"linked"`
	Batches    int `json:"batches" yaml:"batches"`
}

// AuditEntry records one run.
type AuditEntry struct {
	ID          string    `json:"id" yaml:"id"`
	At          utc.Time  `json:"at" yaml:"at"`
	Operation   string    `json:"operation" yaml:"operation"`
	Status      Status    `json:"status" yaml:"status"`
	Message     string    `json:"message" yaml:"message"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	ContentHash string    `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
	ErrorKind   string    `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Stats       *RunStats `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// State is the persisted seed metadata.
type State struct {
	SchemaVersion  int              `json:"schema_version" yaml:"schema_version"`
	CatalogVersion string           `json:"catalog_version" yaml:"catalog_version"`
	ContentHash    string           `json:"content_hash" yaml:"content_hash"`
	LastStatus     Status           `json:"last_status" yaml:"last_status"`
	LastMessage    string           `json:"last_message" yaml:"last_message"`
	LastStats      *RunStats        `json:"last_stats,omitempty" yaml:"last_stats,omitempty"`
	LastValidation *validate.Report `json:"last_validation,omitempty" yaml:"last_validation,omitempty"`
	LastSource     string           `json:"last_source,omitempty" yaml:"last_source,omitempty"`
	LastRunAt      utc.Time         `json:"last_run_at" yaml:"last_run_at"`
	LastLinkError  string           `json:"last_link_error,omitempty" yaml:"last_link_error,omitempty"`
	LastLinkAt     utc.Time         `json:"last_link_at" yaml:"last_link_at"`
	LastRepairHash string           `json:"last_repair_hash,omitempty" yaml:"last_repair_hash,omitempty"`
	Stage          Stage            `json:"stage" yaml:"stage"`
	Audit          []AuditEntry     `json:"audit" yaml:"audit"`
}

// New returns an empty state at the current schema version.
func New() *State {
	return &State{
		SchemaVersion: constants.StateSchemaVersion,
		Stage:         StageIdle,
		Audit:         []AuditEntry{},
	}
}

// Decode reads a persisted state. Empty input yields New().
func Decode(data []byte) (*State, error) {
	if len(data) == 0 {
		return New(), nil
	}
	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.WrapParse("json", constants.SeedStateKey, err)
	}
	switch {
	case s.SchemaVersion == 0:
		s.SchemaVersion = constants.StateSchemaVersion
	case s.SchemaVersion > constants.StateSchemaVersion:
		return nil, &errors.ParseError{
			Format:  "json",
			File:    constants.SeedStateKey,
			Message: fmt.Sprintf("schema version %d is newer than supported version %d", s.SchemaVersion, constants.StateSchemaVersion),
		}
	}
	if s.Audit == nil {
		s.Audit = []AuditEntry{}
	}
	if s.Stage == "" {
		s.Stage = StageIdle
	}
	return s, nil
}

// Encode serializes the state for storage.
func (s *State) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	return deepcopy.Copy(s).(*State)
}

// Record prepends entry to the audit log, dropping the oldest entries past
// the cap. Missing IDs and timestamps are filled in.
func (s *State) Record(entry AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.Time.IsZero() {
		entry.At = utc.Now()
	}
	s.Audit = append([]AuditEntry{entry}, s.Audit...)
	if len(s.Audit) > constants.MaxAuditEntries {
		s.Audit = s.Audit[:constants.MaxAuditEntries]
	}
}

// Outcome is what a finished run writes into the state.
type Outcome struct {
	Operation   string
	Status      Status
	Message     string
	Source      string
	ContentHash string
	ErrorKind   string
	Stats       *RunStats
	Validation  *validate.Report
	At          utc.Time
}

// Apply records a finished run: the last-run fields and one audit entry.
// The content hash is only replaced by successful runs that carry one.
func (s *State) Apply(o Outcome) {
	if o.At.Time.IsZero() {
		o.At = utc.Now()
	}
	s.LastStatus = o.Status
	s.LastMessage = o.Message
	s.LastRunAt = o.At
	if o.Stats != nil {
		s.LastStats = o.Stats
	}
	if o.Validation != nil {
		s.LastValidation = o.Validation
	}
	if o.Source != "" {
		s.LastSource = o.Source
	}
	if o.Status == StatusSuccess && o.ContentHash != "" {
		s.ContentHash = o.ContentHash
	}
	s.Record(o.Entry())
}

// Entry returns the audit entry describing o.
func (o Outcome) Entry() AuditEntry {
	return AuditEntry{
		At:          o.At,
		Operation:   o.Operation,
		Status:      o.Status,
		Message:     o.Message,
		Source:      o.Source,
		ContentHash: o.ContentHash,
		ErrorKind:   o.ErrorKind,
		Stats:       o.Stats,
	}
}

// ImportReason explains why a full import is warranted. Empty means the
// catalog is current.
func (s *State) ImportReason(catalogVersion string) string {
	switch {
	case s.CatalogVersion != catalogVersion:
		return fmt.Sprintf("catalog version %q differs from %q", s.CatalogVersion, catalogVersion)
	case s.ContentHash == "":
		return "no content hash recorded"
	case s.LastStatus != StatusSuccess:
		return fmt.Sprintf("last status is %q", s.LastStatus)
	default:
		return ""
	}
}

// Unchanged reports whether hash matches the last successful import.
func (s *State) Unchanged(hash string) bool {
	return hash != "" && s.ContentHash == hash && s.LastStatus == StatusSuccess
}
