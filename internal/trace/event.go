package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a stage or file.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks its end.
	KindSpanEnd
	// KindPoint is an instant event, e.g. a single allocation decision.
	KindPoint
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates how coarse an event is.
// Lower numeric values are coarser.
type Scope uint8

const (
	// ScopeDriver covers a whole CLI invocation.
	ScopeDriver Scope = iota + 1
	// ScopePass covers one pipeline stage (lex, parse, tac, cfg, regalloc, cpu, run).
	ScopePass
	// ScopeFile covers one source file of a directory build.
	ScopeFile
	// ScopeNode covers single instructions, blocks and allocator steps.
	ScopeNode
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeFile:
		return "file"
	case ScopeNode:
		return "node"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	GID      uint64
	Name     string // "lex", "regalloc", "file:loop.tac"
	Detail   string
	Extra    map[string]string
}
