package pipeline

import (
	"vidscribe/internal/artifact"
)

// StageState is the derived execution state of one (video, stage) pair.
// Pending and Done come from a pure function over artifact store contents;
// Failed is assigned only within a run, when a collaborator errors.
type StageState int

const (
	StagePending StageState = iota
	StageDone
	StageFailed
)

func (s StageState) String() string {
	switch s {
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "pending"
	}
}

// stageState derives a stage's state from the store. With force set, every
// stage reads as pending so its work is regenerated.
func stageState(store artifact.Store, dir, video string, kind artifact.Kind, force bool) StageState {
	if force {
		return StagePending
	}
	if artifact.Complete(store, dir, video, kind) {
		return StageDone
	}
	return StagePending
}
