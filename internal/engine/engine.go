package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/cutroom/internal/geometry"
	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/playhead"
	"github.com/roach88/cutroom/internal/staging"
	"github.com/roach88/cutroom/internal/timeline"
)

// Default staging sessions, one per editor panel.
const (
	EditorCaptions  = "captions"
	EditorEffects   = "effects"
	EditorAudio     = "audio"
	EditorTransform = "transform"
)

// Journal records executed commands. store.Store implements it.
type Journal interface {
	Append(ctx context.Context, cmd ir.Command, out ir.Outcome) error
}

// TemplateSource resolves named track templates. templates.Registry
// implements it.
type TemplateSource interface {
	Template(name string) (timeline.TrackTemplate, bool)
}

// Notification is published after every mutating command.
type Notification struct {
	Command ir.Command `json:"command"`
	Outcome ir.Outcome `json:"outcome"`
}

// Engine owns one timeline and everything that edits it.
//
// Thread-safety model:
//   - Execute: safe from any goroutine; ops are serialized by mu
//   - Submit: safe from any goroutine; requires Run
//   - Run: must be called from exactly one goroutine
//   - Timeline/Mapper: callers must hold the engine via View
type Engine struct {
	mu       sync.Mutex
	tl       *timeline.Timeline
	mapper   *geometry.Mapper
	playhead *playhead.Controller
	sessions map[string]*staging.Session[timeline.Clip]
	clock    *Clock
	ids      *recordingIDs
	queue    *requestQueue

	journal   Journal
	templates TemplateSource
	logger    *slog.Logger
	session   string
	replaying bool

	tlOpts     timeline.Options
	mapperOpts []geometry.Option
	baseIDs    timeline.IDGenerator

	subMu   sync.Mutex
	subs    map[int]func(Notification)
	nextSub int
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal appends every mutating command to j.
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDGenerator sets the id source for tracks and clips.
// Default: timeline.UUIDGenerator.
func WithIDGenerator(g timeline.IDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.baseIDs = g
		}
	}
}

// WithTemplates enables addTrack{template}.
func WithTemplates(t TemplateSource) Option {
	return func(e *Engine) {
		e.templates = t
	}
}

// WithTimelineOptions sets the edit policies.
func WithTimelineOptions(o timeline.Options) Option {
	return func(e *Engine) {
		e.tlOpts = o
	}
}

// WithMapperOptions configures the geometry mapper (zoom bounds, snap grid).
func WithMapperOptions(opts ...geometry.Option) Option {
	return func(e *Engine) {
		e.mapperOpts = append(e.mapperOpts, opts...)
	}
}

// WithSession sets the session token used when Execute is given none.
// Default: a fresh UUIDv7.
func WithSession(token string) Option {
	return func(e *Engine) {
		e.session = token
	}
}

// WithClock resumes the logical clock, e.g. at a journal's last seq.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// New creates an engine with an empty timeline.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:    NewClock(),
		queue:    newRequestQueue(),
		logger:   slog.Default(),
		baseIDs:  timeline.UUIDGenerator{},
		sessions: make(map[string]*staging.Session[timeline.Clip]),
		subs:     make(map[int]func(Notification)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.session == "" {
		e.session = uuid.Must(uuid.NewV7()).String()
	}

	e.mapper = geometry.NewMapper(e.mapperOpts...)
	e.ids = &recordingIDs{base: e.baseIDs}
	e.tl = timeline.New(
		timeline.WithOptions(e.tlOpts),
		timeline.WithSnapper(e.mapper),
		timeline.WithIDGenerator(e.ids),
	)
	e.playhead = playhead.New(e.tl)
	for _, name := range []string{EditorCaptions, EditorEffects, EditorAudio, EditorTransform} {
		e.sessions[name] = staging.NewSession[timeline.Clip](name, e.tl.ClipEdits())
	}
	return e
}

// Execute runs one op and returns its outcome. Domain failures are
// reported in the outcome; the error is non-nil only when the context is
// done or the journal write failed. An empty session uses the engine's
// default token.
func (e *Engine) Execute(ctx context.Context, session string, op ir.OpName, a ir.IRObject) (ir.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return ir.Outcome{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.execute(ctx, session, op, a)
}

// execute must be called with mu held.
func (e *Engine) execute(ctx context.Context, session string, op ir.OpName, rawArgs ir.IRObject) (ir.Outcome, error) {
	if session == "" {
		session = e.session
	}
	if rawArgs == nil {
		rawArgs = ir.IRObject{}
	}
	def, known := catalog[op]
	mutating := known && !def.sig.ReadOnly

	seq := e.clock.Current()
	if mutating {
		seq = e.clock.Next()
	}
	cmdID, err := ir.CommandID(session, op, rawArgs, seq)
	if err != nil {
		return ir.Outcome{}, fmt.Errorf("execute %s: %w", op, err)
	}
	cmd := ir.Command{
		ID:            cmdID,
		Session:       session,
		Op:            op,
		Args:          rawArgs,
		Seq:           seq,
		EngineVersion: ir.EngineVersion,
	}

	var result ir.IRObject
	var runErr error
	if !known {
		runErr = &CommandError{Code: CodeUnknownOp, Message: fmt.Sprintf("unknown op %q", op), Op: op}
	} else if a, err := checkArgs(def.sig, rawArgs); err != nil {
		runErr = err
	} else {
		e.ids.start()
		result, runErr = def.run(e, a)
		if created := e.ids.finish(); runErr == nil && len(created) > 0 {
			result["created"] = stringArray(created)
		}
		if runErr == nil && mutating {
			// Edits can shrink the project under the playhead.
			e.playhead.Sync(e.playhead.Time())
		}
	}

	outCase := ir.CaseOk
	if runErr != nil {
		var msg string
		outCase, msg = caseOf(runErr)
		result = ir.IRObject{"message": ir.IRString(msg)}
	} else if result == nil {
		result = ir.IRObject{}
	}

	outID, err := ir.OutcomeID(cmdID, outCase, result, seq)
	if err != nil {
		return ir.Outcome{}, fmt.Errorf("execute %s: %w", op, err)
	}
	out := ir.Outcome{ID: outID, CommandID: cmdID, Case: outCase, Result: result, Seq: seq}

	if outCase == ir.CaseOk {
		e.logger.Debug("command executed", "op", op, "seq", seq, "session", session)
	} else {
		e.logger.Info("command failed", "op", op, "seq", seq, "session", session, "case", outCase, "message", out.Message())
	}

	if !mutating || e.replaying {
		return out, nil
	}
	if e.journal != nil {
		if err := e.journal.Append(ctx, cmd, out); err != nil {
			e.logger.Error("journal append failed", "op", op, "seq", seq, "error", err)
			return out, fmt.Errorf("journal %s: %w", op, err)
		}
	}
	e.notify(Notification{Command: cmd, Outcome: out})
	return out, nil
}

// Subscribe registers fn for a Notification after every mutating command
// and returns a function that removes it. fn runs while the engine is
// locked and must not call back into it.
func (e *Engine) Subscribe(fn func(Notification)) (unsubscribe func()) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Engine) notify(n Notification) {
	e.subMu.Lock()
	fns := make([]func(Notification), 0, len(e.subs))
	for id := 0; id < e.nextSub; id++ {
		if fn, ok := e.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(n)
	}
}

// View runs fn with the engine locked. fn may read the timeline and mapper
// but must not mutate them.
func (e *Engine) View(fn func(tl *timeline.Timeline, m *geometry.Mapper)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.tl, e.mapper)
}

// Snapshot copies the timeline.
func (e *Engine) Snapshot() timeline.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tl.Snapshot()
}

// Validate checks the timeline invariants.
func (e *Engine) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tl.Validate()
}

// Playhead returns the playhead controller. Seek/Play/Pause through it are
// not journaled; use the seek/play/pause ops for that.
func (e *Engine) Playhead() *playhead.Controller {
	return e.playhead
}

// Session returns the default session token.
func (e *Engine) Session() string {
	return e.session
}

// Clock returns the logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// MinDuration returns the timeline's minimum clip duration.
func (e *Engine) MinDuration() float64 {
	return e.tl.Options().MinDuration
}
