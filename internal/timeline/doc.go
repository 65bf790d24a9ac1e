// Package timeline implements the clip/track model and the manipulation
// algorithms of the editor.
//
// # Storage
//
// A Timeline owns two arenas: a TrackRegistry (trackID → *Track, plus the
// track order) and a ClipStore (clipID → *Clip). Tracks hold only an ordered
// list of clip ids, sorted by start time; the ClipStore is the single owner
// of clip data. Lookups and updates are O(1); ordering work is proportional
// to the clips on one track.
//
// # Operations
//
// All mutating operations validate first and mutate second. An operation
// that returns an error leaves the timeline exactly as it found it.
//
//	AddTrack / RemoveTrack / ReorderTrack / UpdateTrack / DuplicateTrack
//	AddClip / DeleteClip
//	MoveClip / ResizeClip / SplitClip / MergeClip / DuplicateClip
//
// Expected domain violations are returned as *Error with a Kind:
//
//	InvalidReference  unknown track or clip id
//	InvalidRange      non-positive duration, negative start, split point
//	                  inside the minimum-duration margins, bad field value
//	Conflict          destination interval overlaps a clip on the track
//	MergeNotAdjacent  clips not touching within the merge epsilon
//	Locked            the clip or track is locked
//
// A violated internal invariant (a track listing a clip the store does not
// hold, say) is a bug in this package, not bad input, and panics.
//
// # Overlap policy
//
// By default clips on one track never overlap: placements that would overlap
// are rejected with Conflict (or InvalidRange for resizes). Options.AllowOverlap
// restores the permissive behaviour where overlapping clips coexist.
//
// # Content sharing
//
// DuplicateClip, DuplicateTrack and SplitClip copy the ContentRef handle.
// The referenced asset is shared, never copied.
package timeline
