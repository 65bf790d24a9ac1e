package timeline

import (
	"fmt"
	"math"
	"slices"

	"github.com/roach88/cutroom/internal/staging"
)

// Staged clip fields accepted by ClipEdits.
const (
	FieldName       = "name"
	FieldText       = "text"
	FieldVolume     = "volume"
	FieldOpacity    = "opacity"
	FieldMuted      = "muted"
	FieldLocked     = "locked"
	FieldEffects    = "effects"
	FieldTransformX = "transform_x"
	FieldTransformY = "transform_y"
	FieldScale      = "scale"
	FieldRotation   = "rotation"
)

// ClipEdits adapts the timeline's clips as a staging target. Only cosmetic
// fields are editable; geometry goes through the manipulation operations.
type ClipEdits struct {
	tl *Timeline
}

var _ staging.Target[Clip] = ClipEdits{}

// ClipEdits returns the staging target for clip fields.
func (tl *Timeline) ClipEdits() ClipEdits {
	return ClipEdits{tl: tl}
}

// Get returns the canonical clip.
func (e ClipEdits) Get(id string) (Clip, error) {
	return e.tl.GetClip(id)
}

// Overlay returns c with p applied. Fields are applied in name order so the
// first reported error is stable.
func (e ClipEdits) Overlay(c Clip, p staging.Patch) (Clip, error) {
	c = c.clone()
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if err := setClipField(&c, key, p[key]); err != nil {
			return Clip{}, err
		}
	}
	return c, nil
}

// Commit applies every patch or none. A clip on a locked track rejects any
// patch. A clip that is locked, and stays locked after its patch, rejects
// any change besides the lock itself.
func (e ClipEdits) Commit(patches map[string]staging.Patch) error {
	ids := make([]string, 0, len(patches))
	for id := range patches {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	next := make([]Clip, 0, len(ids))
	for _, id := range ids {
		cur, err := e.tl.clips.get(id)
		if err != nil {
			return err
		}
		t, err := e.tl.tracks.get(cur.TrackID)
		if err != nil {
			return err
		}
		if t.Locked {
			return newError(KindLocked, t.ID, "track is locked")
		}
		c, err := e.Overlay(*cur, patches[id])
		if err != nil {
			return err
		}
		if cur.Locked && c.Locked && touchesMoreThanLock(patches[id]) {
			return newError(KindLocked, id, "clip is locked")
		}
		next = append(next, c)
	}
	for _, c := range next {
		*e.tl.clips.mustGet(c.ID) = c
	}
	return nil
}

func touchesMoreThanLock(p staging.Patch) bool {
	for k := range p {
		if k != FieldLocked {
			return true
		}
	}
	return false
}

func setClipField(c *Clip, key string, v any) error {
	var err error
	switch key {
	case FieldName:
		c.Name, err = asString(key, v)
	case FieldText:
		c.Text, err = asString(key, v)
	case FieldVolume:
		c.Volume, err = asIntIn(key, v, 0, 100)
	case FieldOpacity:
		c.Opacity, err = asIntIn(key, v, 0, 100)
	case FieldMuted:
		c.Muted, err = asBool(key, v)
	case FieldLocked:
		c.Locked, err = asBool(key, v)
	case FieldEffects:
		c.Effects, err = asEffects(v)
	case FieldTransformX:
		c.Transform.X, err = asIntIn(key, v, math.MinInt32, math.MaxInt32)
	case FieldTransformY:
		c.Transform.Y, err = asIntIn(key, v, math.MinInt32, math.MaxInt32)
	case FieldScale:
		c.Transform.Scale, err = asIntIn(key, v, 1, 10000)
	case FieldRotation:
		c.Transform.Rotation, err = asIntIn(key, v, -360, 360)
	default:
		return newError(KindInvalidRange, c.ID, "unknown clip field %q", key)
	}
	if err != nil {
		return newError(KindInvalidRange, c.ID, "%v", err)
	}
	return nil
}

func asString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s: want string, got %T", key, v)
	}
	return s, nil
}

func asBool(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %s: want bool, got %T", key, v)
	}
	return b, nil
}

func asIntIn(key string, v any, lo, hi int) (int, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("field %s: want integer, got %v", key, x)
		}
		n = int64(x)
	default:
		return 0, fmt.Errorf("field %s: want integer, got %T", key, v)
	}
	if n < int64(lo) || n > int64(hi) {
		return 0, fmt.Errorf("field %s: %d outside %d..%d", key, n, lo, hi)
	}
	return int(n), nil
}

// asEffects accepts []EffectRef or a decoded list of {id, kind} objects.
// A missing id defaults to the kind.
func asEffects(v any) ([]EffectRef, error) {
	switch x := v.(type) {
	case []EffectRef:
		return slices.Clone(x), nil
	case []any:
		out := make([]EffectRef, 0, len(x))
		for i, item := range x {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("field effects[%d]: want object, got %T", i, item)
			}
			kind, _ := m["kind"].(string)
			if kind == "" {
				return nil, fmt.Errorf("field effects[%d]: kind is required", i)
			}
			id, _ := m["id"].(string)
			if id == "" {
				id = kind
			}
			out = append(out, EffectRef{ID: id, Kind: kind})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field effects: want list, got %T", v)
	}
}
