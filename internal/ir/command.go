package ir

// OpName names an engine operation, e.g. "moveClip".
type OpName string

// CaseOk is the outcome case of a successful command.
const CaseOk = "Ok"

// Command is one request to the engine.
type Command struct {
	ID            string   `json:"id"`      // content-addressed, see CommandID
	Session       string   `json:"session"` // editing session token
	Op            OpName   `json:"op"`
	Args          IRObject `json:"args"`
	Seq           int64    `json:"seq"` // logical clock
	EngineVersion string   `json:"engine_version"`
}

// Outcome is the discriminated result of a Command. Case is CaseOk or the
// name of an error kind; Result holds the value or {message}.
type Outcome struct {
	ID        string   `json:"id"`
	CommandID string   `json:"command_id"`
	Case      string   `json:"case"`
	Result    IRObject `json:"result"`
	Seq       int64    `json:"seq"`
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Case == CaseOk
}

// Message returns the error message of a failed outcome.
func (o Outcome) Message() string {
	return o.Result.String("message")
}

// Created returns the entity ids minted while executing the command.
func (o Outcome) Created() []string {
	arr, _ := o.Result["created"].(IRArray)
	ids := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(IRString); ok {
			ids = append(ids, string(s))
		}
	}
	return ids
}

// Entry pairs a journaled command with its outcome.
type Entry struct {
	Command Command `json:"command"`
	Outcome Outcome `json:"outcome"`
}

// ArgType is the declared type of an op argument.
type ArgType string

const (
	ArgString ArgType = "string"
	ArgInt    ArgType = "int"
	ArgBool   ArgType = "bool"
	ArgObject ArgType = "object"

	// ArgTime is a duration or position in seconds. Carried as microseconds.
	ArgTime ArgType = "time"

	// ArgScale is a unitless factor such as zoom. Carried as millionths.
	ArgScale ArgType = "scale"
)

// ArgSpec declares one named argument.
type ArgSpec struct {
	Name     string  `json:"name"`
	Type     ArgType `json:"type"`
	Optional bool    `json:"optional,omitempty"`
}

// OpSig is the signature of an op in the engine catalog.
type OpSig struct {
	Name     OpName    `json:"name"`
	Args     []ArgSpec `json:"args"`
	ReadOnly bool      `json:"read_only,omitempty"` // queries are not journaled
}

// Arg returns the ArgSpec for name.
func (s OpSig) Arg(name string) (ArgSpec, bool) {
	for _, a := range s.Args {
		if a.Name == name {
			return a, true
		}
	}
	return ArgSpec{}, false
}
