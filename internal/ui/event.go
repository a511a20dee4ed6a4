package ui

// Stage is the step a unit is in during a directory run.
type Stage uint8

const (
	StageNone Stage = iota
	StageLoad
	StageAnalyze
	StageReport
)

// Status of a unit or of the whole run.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusCached
	StatusError
)

// Event reports progress of one unit; an empty File updates the run header.
type Event struct {
	File     string
	Stage    Stage
	Status   Status
	Problems int
}
