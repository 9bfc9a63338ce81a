package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/csflow/internal/model"
)

// JSONPrinter prints workflow information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

var _ Printer = &JSONPrinter{}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type identityOutput struct {
	UserID      string `json:"user_id"`
	UserEmail   string `json:"user_email"`
	WorkspaceID string `json:"workspace_id"`
}

type mergeStatusOutput struct {
	ID      string            `json:"id"`
	Name    string            `json:"name,omitempty"`
	Status  string            `json:"status"`
	WebURL  string            `json:"web_url,omitempty"`
	Actions []json.RawMessage `json:"actions"`
}

// runListItem represents a run in the list output (subset of fields).
type runListItem struct {
	ID            string     `json:"id"`
	ChangeSetID   string     `json:"change_set_id"`
	ChangeSetName string     `json:"change_set_name"`
	ApplyMode     string     `json:"apply_mode"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
}

type runOutput struct {
	ID                  string        `json:"id"`
	WorkspaceID         string        `json:"workspace_id"`
	ChangeSetID         string        `json:"change_set_id"`
	ChangeSetName       string        `json:"change_set_name"`
	ChangeSetCreated    bool          `json:"change_set_created"`
	ApplyMode           string        `json:"apply_mode"`
	Status              string        `json:"status"`
	Error               string        `json:"error,omitempty"`
	LastChangeSetStatus string        `json:"last_change_set_status,omitempty"`
	PollCount           int           `json:"poll_count"`
	StartedAt           time.Time     `json:"started_at"`
	FinishedAt          *time.Time    `json:"finished_at"`
	Stages              []stageOutput `json:"stages"`
}

type stageOutput struct {
	Sequence int    `json:"sequence"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// PrintIdentity prints the token owner identity in JSON format.
func (j *JSONPrinter) PrintIdentity(id model.Identity) error {
	return j.encode(identityOutput{
		UserID:      id.UserID,
		UserEmail:   id.UserEmail,
		WorkspaceID: id.WorkspaceID,
	})
}

// PrintMergeStatus prints a change set status in JSON format, actions are printed as received.
func (j *JSONPrinter) PrintMergeStatus(ms model.MergeStatus) error {
	output := mergeStatusOutput{
		ID:      ms.ChangeSet.ID,
		Name:    ms.ChangeSet.Name,
		Status:  string(ms.ChangeSet.Status),
		WebURL:  ms.ChangeSet.WebURL,
		Actions: make([]json.RawMessage, 0, len(ms.Actions)),
	}
	for _, a := range ms.Actions {
		detail := []byte(a.Detail())
		if !json.Valid(detail) {
			detail, _ = json.Marshal(string(detail))
		}
		output.Actions = append(output.Actions, json.RawMessage(detail))
	}

	return j.encode(output)
}

// PrintRunList prints workflow runs in JSON format with a subset of fields.
func (j *JSONPrinter) PrintRunList(runs []model.Run) error {
	items := make([]runListItem, len(runs))
	for i, r := range runs {
		items[i] = runListItem{
			ID:            r.ID,
			ChangeSetID:   r.ChangeSetID,
			ChangeSetName: r.ChangeSetName,
			ApplyMode:     string(r.ApplyMode),
			Status:        string(r.Status),
			StartedAt:     r.StartedAt.UTC(),
			FinishedAt:    utcPtr(r.FinishedAt),
		}
	}

	return j.encode(items)
}

// PrintRun prints a detailed workflow run in JSON format.
func (j *JSONPrinter) PrintRun(run model.Run, stages []model.Stage) error {
	output := runOutput{
		ID:                  run.ID,
		WorkspaceID:         run.WorkspaceID,
		ChangeSetID:         run.ChangeSetID,
		ChangeSetName:       run.ChangeSetName,
		ChangeSetCreated:    run.ChangeSetCreated,
		ApplyMode:           string(run.ApplyMode),
		Status:              string(run.Status),
		Error:               run.Error,
		LastChangeSetStatus: string(run.LastChangeSetStatus),
		PollCount:           run.PollCount,
		StartedAt:           run.StartedAt.UTC(),
		FinishedAt:          utcPtr(run.FinishedAt),
		Stages:              make([]stageOutput, 0, len(stages)),
	}
	for _, s := range stages {
		output.Stages = append(output.Stages, stageOutput{
			Sequence: s.Sequence,
			Name:     s.Name,
			Status:   string(s.Status),
			Error:    s.Error,
		})
	}

	return j.encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
