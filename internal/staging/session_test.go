package staging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type caption struct {
	Text  string
	Color string
}

var errUnknown = errors.New("unknown caption")

// captionStore is a minimal all-or-nothing target.
type captionStore struct {
	items   map[string]caption
	commits int
}

func newCaptionStore() *captionStore {
	return &captionStore{items: map[string]caption{
		"a": {Text: "hello", Color: "white"},
		"b": {Text: "world", Color: "white"},
	}}
}

func (s *captionStore) Get(id string) (caption, error) {
	c, ok := s.items[id]
	if !ok {
		return caption{}, errUnknown
	}
	return c, nil
}

func (s *captionStore) Overlay(c caption, p Patch) (caption, error) {
	for k, v := range p {
		str, ok := v.(string)
		if !ok {
			return c, fmt.Errorf("field %s: want string, got %T", k, v)
		}
		switch k {
		case "text":
			c.Text = str
		case "color":
			if str == "" {
				return c, fmt.Errorf("empty color")
			}
			c.Color = str
		default:
			return c, fmt.Errorf("unknown field %s", k)
		}
	}
	return c, nil
}

func (s *captionStore) Commit(patches map[string]Patch) error {
	next := make(map[string]caption, len(patches))
	for id, p := range patches {
		c, err := s.Get(id)
		if err != nil {
			return err
		}
		if next[id], err = s.Overlay(c, p); err != nil {
			return err
		}
	}
	for id, c := range next {
		s.items[id] = c
	}
	s.commits++
	return nil
}

func TestStageAndRead(t *testing.T) {
	store := newCaptionStore()
	s := NewSession[caption]("captions", store)

	require.NoError(t, s.Stage("a", Patch{"text": "draft"}))
	require.NoError(t, s.Stage("a", Patch{"color": "yellow"}))
	require.NoError(t, s.Stage("a", Patch{"text": "final"}))

	got, err := s.Read("a")
	require.NoError(t, err)
	assert.Equal(t, caption{Text: "final", Color: "yellow"}, got, "later values win, fields merge")

	untouched, err := s.Read("b")
	require.NoError(t, err)
	assert.Equal(t, "world", untouched.Text)

	assert.Equal(t, "hello", store.items["a"].Text, "canonical state unchanged before apply")
	assert.True(t, s.HasPendingChanges())
	assert.Equal(t, []string{"a"}, s.Pending())
	assert.Equal(t, "captions", s.Name())
}

func TestStageRejects(t *testing.T) {
	s := NewSession[caption]("captions", newCaptionStore())

	assert.ErrorIs(t, s.Stage("missing", Patch{"text": "x"}), errUnknown)
	assert.Error(t, s.Stage("a", Patch{"size": "12"}))
	assert.Error(t, s.Stage("a", Patch{"text": 12}))
	assert.False(t, s.HasPendingChanges(), "rejected patches are not staged")
}

func TestDiscardLeavesCanonicalState(t *testing.T) {
	store := newCaptionStore()
	s := NewSession[caption]("captions", store)

	require.NoError(t, s.Stage("a", Patch{"text": "draft"}))
	assert.Equal(t, 1, s.Discard())

	assert.False(t, s.HasPendingChanges())
	assert.Equal(t, "hello", store.items["a"].Text)
	assert.Equal(t, 0, store.commits)

	got, err := s.Read("a")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
}

func TestApplyCommitsAllAndClears(t *testing.T) {
	store := newCaptionStore()
	s := NewSession[caption]("captions", store)

	require.NoError(t, s.Stage("a", Patch{"text": "one"}))
	require.NoError(t, s.Stage("b", Patch{"color": "red"}))

	n, err := s.Apply()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "one", store.items["a"].Text)
	assert.Equal(t, "red", store.items["b"].Color)
	assert.False(t, s.HasPendingChanges())
	assert.Empty(t, s.Pending())

	n, err = s.Apply()
	require.NoError(t, err)
	assert.Equal(t, 0, n, "second apply with nothing staged is a no-op")
	assert.Equal(t, 1, store.commits)
}

func TestApplyFailureKeepsPending(t *testing.T) {
	store := newCaptionStore()
	s := NewSession[caption]("captions", store)

	require.NoError(t, s.Stage("a", Patch{"text": "one"}))
	require.NoError(t, s.Stage("b", Patch{"text": "two"}))
	delete(store.items, "b")

	_, err := s.Apply()
	assert.ErrorIs(t, err, errUnknown)
	assert.Equal(t, "hello", store.items["a"].Text, "no partial application")
	assert.True(t, s.HasPendingChanges())

	p, ok := s.PendingPatch("a")
	require.True(t, ok)
	assert.Equal(t, Patch{"text": "one"}, p)
}
