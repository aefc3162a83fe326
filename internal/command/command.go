// Package command routes inbound text messages to handlers keyed on the
// first word of the message.
package command

import "strings"

// Handler handles one inbound message. The full message text is passed
// through so free-text arguments after the command word stay available.
type Handler interface {
	Execute(from, body string)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(from, body string)

func (f HandlerFunc) Execute(from, body string) { f(from, body) }

// Mapper is the dispatch table. Unrecognized command words go to the
// fallback handler.
type Mapper struct {
	handlers map[string]Handler
	fallback Handler
}

func NewMapper(fallback Handler) *Mapper {
	return &Mapper{
		handlers: make(map[string]Handler),
		fallback: fallback,
	}
}

// Register binds a command word to a handler. Words are matched
// case-insensitively.
func (m *Mapper) Register(word string, h Handler) {
	m.handlers[strings.ToLower(strings.TrimSpace(word))] = h
}

// Dispatch routes a message by its first whitespace-delimited token.
// Returns false when no handler (and no fallback) matched.
func (m *Mapper) Dispatch(from, body string) bool {
	h := m.handlers[Word(body)]
	if h == nil {
		h = m.fallback
	}
	if h == nil {
		return false
	}
	h.Execute(from, body)
	return true
}

// Word extracts the lower-cased command word from a message body.
func Word(body string) string {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
