package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slok/csflow/internal/model"
)

// TablePrinter prints workflow information in a table format.
type TablePrinter struct {
	writer io.Writer
}

var _ Printer = &TablePrinter{}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintIdentity prints the token owner identity.
func (t *TablePrinter) PrintIdentity(id model.Identity) error {
	fmt.Fprintf(t.writer, "User ID:    %s\n", id.UserID)
	fmt.Fprintf(t.writer, "Email:      %s\n", id.UserEmail)
	fmt.Fprintf(t.writer, "Workspace:  %s\n", id.WorkspaceID)
	return nil
}

// PrintMergeStatus prints a change set status and its actions.
func (t *TablePrinter) PrintMergeStatus(ms model.MergeStatus) error {
	cs := ms.ChangeSet
	fmt.Fprintf(t.writer, "ID:         %s\n", cs.ID)
	if cs.Name != "" {
		fmt.Fprintf(t.writer, "Name:       %s\n", cs.Name)
	}
	fmt.Fprintf(t.writer, "Status:     %s\n", cs.Status)
	if cs.WebURL != "" {
		fmt.Fprintf(t.writer, "URL:        %s\n", cs.WebURL)
	}

	if len(ms.Actions) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ACTION\tKIND\tSTATE\tCOMPONENT")
	for _, a := range ms.Actions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Name, a.Kind, a.State, orDash(a.ComponentName))
	}

	return nil
}

// PrintRunList prints workflow runs in a table format.
func (t *TablePrinter) PrintRunList(runs []model.Run) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tCHANGE SET\tAPPLY\tSTATUS\tSTARTED\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			orDash(changeSetLabel(r)),
			orDash(string(r.ApplyMode)),
			r.Status,
			TimeAgo(r.StartedAt),
			runDuration(r),
		)
	}

	return nil
}

// PrintRun prints a detailed workflow run with its stages.
func (t *TablePrinter) PrintRun(run model.Run, stages []model.Stage) error {
	fmt.Fprintf(t.writer, "ID:          %s\n", run.ID)
	fmt.Fprintf(t.writer, "Status:      %s\n", run.Status)
	fmt.Fprintf(t.writer, "Workspace:   %s\n", orDash(run.WorkspaceID))
	fmt.Fprintf(t.writer, "Change set:  %s\n", orDash(changeSetLabel(run)))
	if run.ChangeSetCreated {
		fmt.Fprintf(t.writer, "Created:     yes\n")
	}
	fmt.Fprintf(t.writer, "Apply:       %s\n", orDash(string(run.ApplyMode)))
	if run.LastChangeSetStatus != "" {
		fmt.Fprintf(t.writer, "CS status:   %s (%d polls)\n", run.LastChangeSetStatus, run.PollCount)
	}
	fmt.Fprintf(t.writer, "Started:     %s\n", FormatTimestamp(run.StartedAt))
	if run.FinishedAt != nil {
		fmt.Fprintf(t.writer, "Finished:    %s (%s)\n", FormatTimestamp(*run.FinishedAt), runDuration(run))
	}
	if run.Error != "" {
		fmt.Fprintf(t.writer, "Error:       %s\n", run.Error)
	}

	if len(stages) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "#\tSTAGE\tSTATUS\tERROR")
	for _, s := range stages {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Sequence, s.Name, s.Status, orDash(s.Error))
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func changeSetLabel(r model.Run) string {
	switch {
	case r.ChangeSetName != "" && r.ChangeSetID != "":
		return fmt.Sprintf("%s (%s)", r.ChangeSetName, r.ChangeSetID)
	case r.ChangeSetID != "":
		return r.ChangeSetID
	}
	return r.ChangeSetName
}

func runDuration(r model.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return FormatDuration(r.FinishedAt.Sub(r.StartedAt))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
