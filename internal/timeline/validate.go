package timeline

import (
	"errors"
	"fmt"
)

// Validate checks every structural invariant and returns all violations
// joined. A nil result means the timeline is consistent.
func (tl *Timeline) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	solo := 0
	for i, id := range tl.tracks.order {
		t, ok := tl.tracks.byID[id]
		if !ok {
			fail("track order lists unknown track %s", id)
			continue
		}
		if t.Order != i {
			fail("track %s has order %d at index %d", id, t.Order, i)
		}
		if t.Solo {
			solo++
			if tl.tracks.soloTrackID != id {
				fail("track %s soloed but solo track is %q", id, tl.tracks.soloTrackID)
			}
		}
		prevEnd, prevStart := 0.0, -1.0
		for _, clipID := range t.ClipIDs {
			c, ok := tl.clips.byID[clipID]
			if !ok {
				fail("track %s lists unknown clip %s", id, clipID)
				continue
			}
			if c.TrackID != id {
				fail("clip %s listed on %s but assigned to %s", clipID, id, c.TrackID)
			}
			if c.StartTime < prevStart {
				fail("track %s clips out of start order at %s", id, clipID)
			}
			if !tl.opts.AllowOverlap && c.StartTime < prevEnd-timeEpsilon {
				fail("clip %s overlaps its predecessor on track %s", clipID, id)
			}
			prevStart = c.StartTime
			if c.End() > prevEnd {
				prevEnd = c.End()
			}
		}
	}
	if len(tl.tracks.order) != len(tl.tracks.byID) {
		fail("track order has %d entries for %d tracks", len(tl.tracks.order), len(tl.tracks.byID))
	}
	if solo > 1 {
		fail("%d tracks soloed", solo)
	}
	if solo == 0 && tl.tracks.soloTrackID != "" {
		fail("solo track %s is not soloed", tl.tracks.soloTrackID)
	}

	listed := 0
	for _, t := range tl.tracks.byID {
		listed += len(t.ClipIDs)
	}
	if listed != len(tl.clips.byID) {
		fail("tracks list %d clips, store holds %d", listed, len(tl.clips.byID))
	}
	for id, c := range tl.clips.byID {
		if _, ok := tl.tracks.byID[c.TrackID]; !ok {
			fail("clip %s references missing track %s", id, c.TrackID)
		}
		if !(c.Duration > 0) {
			fail("clip %s has non-positive duration %g", id, c.Duration)
		}
		if c.StartTime < 0 {
			fail("clip %s has negative start %g", id, c.StartTime)
		}
	}
	return errors.Join(errs...)
}
