package formatter

import (
	"strconv"
	"strings"

	"github.com/yamaaaaaa31/logust/core"
)

// FieldKind identifies which record attribute a Field step renders.
type FieldKind uint8

const (
	KindTime FieldKind = iota
	KindLevel
	KindMessage
	KindName
	KindFunction
	KindLine
	KindFile
	KindElapsed
	KindThread
	KindProcess
	KindExtra
)

// Align is the padding direction applied when a field's rendered width is
// less than the configured width.
type Align uint8

const (
	AlignNone Align = iota
	AlignLeft       // {token:<N} — pad with spaces on the right
	AlignRight      // {token:>N} — pad with spaces on the left
)

// step is one instruction in a compiled Plan: either a literal run of text
// or a field reference with optional width/alignment.
type step struct {
	literal string
	kind    FieldKind
	key     string // extra[key] name, only set when kind == KindExtra
	width   int
	align   Align
	isField bool
}

// Plan is a format template compiled once into a sequence of steps. It is
// immutable after Compile and safe for concurrent use by many goroutines.
type Plan struct {
	steps  []step
	source string
}

// Source returns the original template string the plan was compiled from.
func (p *Plan) Source() string { return p.source }

// Requirements walks the compiled steps once and reports which optional
// Entry fields the plan references. This is the collection-requirements
// analyzer of §4.3: computed at compile time, never re-inspected at emit.
func (p *Plan) Requirements() core.CollectionRequirements {
	var r core.CollectionRequirements
	for _, s := range p.steps {
		if !s.isField {
			continue
		}
		switch s.kind {
		case KindName, KindFunction, KindLine, KindFile:
			r.Caller = true
		case KindThread:
			r.Thread = true
		case KindProcess:
			r.Process = true
		case KindElapsed:
			r.Elapsed = true
		}
	}
	return r
}

// Compile parses a format template into a reusable Plan. Recognized tokens:
// {time}, {level}, {message}, {name}, {function}, {line}, {file}, {elapsed},
// {thread}, {process}, {extra[key]}, each optionally followed by
// ":<N" or ":>N" for width/alignment. Unknown token names compile to a step
// that always renders as the empty string, keeping the hot path robust to
// typos rather than failing at render time.
func Compile(template string) *Plan {
	p := &Plan{source: template}
	i := 0
	var lit strings.Builder
	flushLit := func() {
		if lit.Len() > 0 {
			p.steps = append(p.steps, step{literal: lit.String()})
			lit.Reset()
		}
	}

	for i < len(template) {
		c := template[i]
		if c != '{' {
			lit.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			// Unbalanced brace: treat the rest as literal text.
			lit.WriteString(template[i:])
			break
		}
		token := template[i+1 : i+end]
		flushLit()
		p.steps = append(p.steps, parseToken(token))
		i += end + 1
	}
	flushLit()
	return p
}

// parseToken compiles one `{...}` body into a field step.
func parseToken(token string) step {
	name := token
	width := 0
	align := AlignNone

	if idx := strings.IndexByte(token, ':'); idx >= 0 {
		name = token[:idx]
		spec := token[idx+1:]
		if len(spec) > 0 {
			switch spec[0] {
			case '<':
				align = AlignLeft
				spec = spec[1:]
			case '>':
				align = AlignRight
				spec = spec[1:]
			}
			if n, err := strconv.Atoi(spec); err == nil {
				width = n
			}
		}
	}

	if strings.HasPrefix(name, "extra[") && strings.HasSuffix(name, "]") {
		key := name[len("extra[") : len(name)-1]
		return step{isField: true, kind: KindExtra, key: key, width: width, align: align}
	}

	kind, ok := tokenKinds[name]
	if !ok {
		// Unknown token: render as empty string forever.
		return step{isField: true, kind: unknownKind, width: width, align: align}
	}
	return step{isField: true, kind: kind, width: width, align: align}
}

const unknownKind FieldKind = 255

var tokenKinds = map[string]FieldKind{
	"time":     KindTime,
	"level":    KindLevel,
	"message":  KindMessage,
	"name":     KindName,
	"function": KindFunction,
	"line":     KindLine,
	"file":     KindFile,
	"elapsed":  KindElapsed,
	"thread":   KindThread,
	"process":  KindProcess,
}
