package cheat

import (
	"slices"
	"strings"
)

type Code struct {
	Keys []string
	Flag Flag
}

func letters(word string) []string {
	return strings.Split(word, "")
}

var DefaultCodes = []Code{
	{Keys: letters("iddqd"), Flag: FlagGod},
	{Keys: letters("motherlode"), Flag: FlagRich},
	{Keys: []string{"up", "up", "down", "down", "left", "right", "left", "right", "b", "a"}, Flag: FlagImmortal},
}

type Toggled struct {
	Flag   Flag `json:"flag"`
	Active bool `json:"active"`
}

// Matcher watches a stream of key tokens for any code in its table. It is not
// safe for concurrent use.
type Matcher struct {
	reg   *Registry
	codes []Code
	buf   []string
	size  int
}

func NewMatcher(reg *Registry, codes []Code) *Matcher {
	if codes == nil {
		codes = DefaultCodes
	}
	size := 0
	for _, c := range codes {
		size = max(size, len(c.Keys))
	}
	return &Matcher{reg: reg, codes: codes, size: size}
}

// Feed appends one key and toggles the flag of a code that the buffer now ends with.
func (m *Matcher) Feed(key string) (Toggled, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || m.size == 0 {
		return Toggled{}, false
	}
	m.buf = append(m.buf, key)
	if len(m.buf) > m.size {
		m.buf = m.buf[len(m.buf)-m.size:]
	}
	for _, c := range m.codes {
		n := len(c.Keys)
		if n == 0 || len(m.buf) < n || !slices.Equal(m.buf[len(m.buf)-n:], c.Keys) {
			continue
		}
		m.buf = m.buf[:0]
		return Toggled{Flag: c.Flag, Active: m.reg.Toggle(c.Flag)}, true
	}
	return Toggled{}, false
}

func (m *Matcher) FeedAll(keys []string) []Toggled {
	var out []Toggled
	for _, k := range keys {
		if t, ok := m.Feed(k); ok {
			out = append(out, t)
		}
	}
	return out
}
