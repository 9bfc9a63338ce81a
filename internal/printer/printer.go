package printer

import "github.com/slok/csflow/internal/model"

// Printer knows how to print workflow information in different formats.
type Printer interface {
	PrintIdentity(id model.Identity) error
	PrintMergeStatus(ms model.MergeStatus) error
	PrintRunList(runs []model.Run) error
	PrintRun(run model.Run, stages []model.Stage) error
	PrintMessage(msg string) error
}
