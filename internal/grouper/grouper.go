package grouper

import (
	"vidscribe/internal/models"
)

// DefaultThreshold is the similarity ratio at or above which a frame joins
// the current run.
const DefaultThreshold = 0.8

// Grouper merges one video's frame descriptions into a deduplicated,
// scene-annotated timeline.
type Grouper struct {
	threshold float64
}

func New(threshold float64) *Grouper {
	return &Grouper{threshold: threshold}
}

// Collapse walks the document's timestamps in chronological order and groups
// consecutive frames whose normalized descriptions score at or above the
// threshold against the run's anchor.
//
// The anchor is the FIRST frame of the current run, not the previous frame:
// drift inside a run is bounded by comparison against the run's original
// text. Changing this anchor changes every grouping result downstream.
func (g *Grouper) Collapse(doc models.FrameDescriptionDocument) []models.GroupedRun {
	runs := make([]models.GroupedRun, 0)
	times := doc.Timestamps()
	if len(times) == 0 {
		return runs
	}

	start := times[0]
	last := start
	anchor := doc[start]
	anchorNorm := Normalize(anchor)

	for _, ts := range times[1:] {
		desc := doc[ts]
		if Ratio(anchorNorm, Normalize(desc)) >= g.threshold {
			last = ts
			continue
		}
		runs = append(runs, models.GroupedRun{StartTime: start, EndTime: last, Description: anchor})
		start, last = ts, ts
		anchor = desc
		anchorNorm = Normalize(desc)
	}
	runs = append(runs, models.GroupedRun{StartTime: start, EndTime: last, Description: anchor})
	return runs
}

// Result assembles one video's final record. The scene document is attached
// verbatim when present; grouping never alters scene boundaries and never
// requires run boundaries to align with them.
func (g *Grouper) Result(doc models.FrameDescriptionDocument, scenes *models.SceneDocument) models.VideoResult {
	return models.VideoResult{
		Timestamps: g.Collapse(doc),
		ScenesInfo: scenes,
	}
}
