package document

import (
	"bytes"
	"fmt"
	"strings"
)

// Parse splits a body into text blocks and component references.
//
// A component tag starts with '<' and an upper-case letter. It is either
// self-closing or an open/close pair with only whitespace between. Tags inside
// fenced code blocks and inline code spans are plain text, as are lower-case
// HTML tags. Whitespace-only text between components is dropped.
func Parse(src []byte) (Body, error) {
	return parseAt(src, 1)
}

type parser struct {
	src       []byte
	pos       int
	line      int
	lineStart int
	body      Body
	text      strings.Builder
	textLine  int
}

func parseAt(src []byte, firstLine int) (Body, error) {
	p := &parser{src: src, line: firstLine}
	for p.pos < len(p.src) {
		if p.pos == p.lineStart {
			if ok, err := p.fence(); err != nil {
				return nil, err
			} else if ok {
				continue
			}
		}

		c := p.src[p.pos]
		switch {
		case c == '`':
			p.codeSpan()
		case c == '<' && p.pos+1 < len(p.src) && isUpper(p.src[p.pos+1]):
			p.flush()
			n, err := p.tag()
			if err != nil {
				return nil, err
			}
			p.body = append(p.body, n)
		default:
			p.emit(p.pos + 1)
		}
	}
	p.flush()
	return p.body, nil
}

// emit copies src[pos:end] into the pending text block.
func (p *parser) emit(end int) {
	if p.text.Len() == 0 {
		p.textLine = p.line
	}
	for ; p.pos < end; p.pos++ {
		c := p.src[p.pos]
		p.text.WriteByte(c)
		if c == '\n' {
			p.line++
			p.lineStart = p.pos + 1
		}
	}
}

func (p *parser) flush() {
	if p.text.Len() == 0 {
		return
	}
	s := p.text.String()
	p.text.Reset()
	if strings.TrimSpace(s) == "" {
		return
	}
	p.body = append(p.body, Node{Kind: KindText, Text: s, Line: p.textLine})
}

func (p *parser) malformed(reason string, args ...any) *MalformedError {
	return &MalformedError{
		Line:   p.line,
		Column: p.pos - p.lineStart + 1,
		Reason: fmt.Sprintf(reason, args...),
	}
}

// fence consumes a whole fenced code block starting at the current line.
func (p *parser) fence() (bool, error) {
	marker, n := fenceOpen(p.src[p.pos:])
	if n == 0 {
		return false, nil
	}
	openLine, openCol := p.line, p.pos-p.lineStart+1
	p.emit(lineEnd(p.src, p.pos))
	for p.pos < len(p.src) {
		closing := isFenceClose(p.src[p.pos:lineEnd(p.src, p.pos)], marker, n)
		p.emit(lineEnd(p.src, p.pos))
		if closing {
			return true, nil
		}
	}
	return false, &MalformedError{Line: openLine, Column: openCol, Reason: "unclosed code fence"}
}

// codeSpan consumes an inline code span. An unmatched backtick run is text.
// A span never crosses a blank line or a code fence.
func (p *parser) codeSpan() {
	run := 0
	for p.pos+run < len(p.src) && p.src[p.pos+run] == '`' {
		run++
	}
	delim := bytes.Repeat([]byte{'`'}, run)
	limit := paragraphEnd(p.src, p.pos+run)
	for i := p.pos + run; i < limit; {
		j := bytes.Index(p.src[i:limit], delim)
		if j < 0 {
			break
		}
		start := i + j
		end := start + run
		if end < limit && p.src[end] == '`' {
			// longer run, keep looking past it
			for end < limit && p.src[end] == '`' {
				end++
			}
			i = end
			continue
		}
		p.emit(end)
		return
	}
	p.emit(p.pos + run)
}

func (p *parser) tag() (Node, error) {
	n := Node{Kind: KindComponent, Line: p.line}
	p.pos++ // '<'
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	n.Name = string(p.src[start:p.pos])

	seen := make(map[string]bool)
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Node{}, p.malformed("unterminated tag <%s>", n.Name)
		}

		switch {
		case bytes.HasPrefix(p.src[p.pos:], []byte("/>")):
			p.pos += 2
			return n, nil
		case p.src[p.pos] == '>':
			p.pos++
			if err := p.closeTag(n.Name); err != nil {
				return Node{}, err
			}
			return n, nil
		}

		prop, err := p.attr()
		if err != nil {
			return Node{}, err
		}
		if seen[prop.Name] {
			return Node{}, p.malformed("duplicate attribute %q on <%s>", prop.Name, n.Name)
		}
		seen[prop.Name] = true
		n.Props = append(n.Props, prop)
	}
}

// closeTag consumes whitespace and the matching </Name>.
func (p *parser) closeTag(name string) error {
	closer := []byte("</" + name + ">")
	i := bytes.Index(p.src[p.pos:], closer)
	if i < 0 {
		return p.malformed("missing </%s>", name)
	}
	inner := p.src[p.pos : p.pos+i]
	if len(bytes.TrimSpace(inner)) > 0 {
		return p.malformed("component <%s> must not have children", name)
	}
	p.advance(p.pos + i + len(closer))
	return nil
}

func (p *parser) attr() (Prop, error) {
	start := p.pos
	for p.pos < len(p.src) && isAttrByte(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return Prop{}, p.malformed("unexpected character %q in tag", p.src[p.pos])
	}
	prop := Prop{Name: string(p.src[start:p.pos])}

	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '=' {
		prop.Value = "true"
		return prop, nil
	}
	p.pos++
	p.skipSpace()
	if p.pos >= len(p.src) {
		return Prop{}, p.malformed("attribute %q has no value", prop.Name)
	}

	switch q := p.src[p.pos]; q {
	case '"', '\'':
		end := bytes.IndexByte(p.src[p.pos+1:], q)
		if end < 0 {
			return Prop{}, p.malformed("unterminated value for attribute %q", prop.Name)
		}
		prop.Value = string(p.src[p.pos+1 : p.pos+1+end])
		p.advance(p.pos + end + 2)
	case '{':
		end, ok := matchBrace(p.src, p.pos)
		if !ok {
			return Prop{}, p.malformed("unbalanced '{' in attribute %q", prop.Name)
		}
		prop.Value = strings.TrimSpace(string(p.src[p.pos+1 : end]))
		prop.Expr = true
		p.advance(end + 1)
	default:
		return Prop{}, p.malformed("attribute %q: expected quoted value or {expression}", prop.Name)
	}
	return prop, nil
}

// advance moves to end while keeping line accounting.
func (p *parser) advance(end int) {
	for ; p.pos < end; p.pos++ {
		if p.src[p.pos] == '\n' {
			p.line++
			p.lineStart = p.pos + 1
		}
	}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r':
			p.pos++
		case '\n':
			p.pos++
			p.line++
			p.lineStart = p.pos
		default:
			return
		}
	}
}

// matchBrace returns the index of the '}' closing the '{' at open. String
// literals inside the expression are skipped.
func matchBrace(src []byte, open int) (int, bool) {
	depth := 0
	for i := open; i < len(src); i++ {
		switch c := src[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		case '"', '\'', '`':
			end := bytes.IndexByte(src[i+1:], c)
			if end < 0 {
				return 0, false
			}
			i += end + 1
		}
	}
	return 0, false
}

// fenceOpen reports the fence character and run length when line opens a
// fenced code block (up to three spaces of indentation).
func fenceOpen(line []byte) (byte, int) {
	i := 0
	for i < 3 && i < len(line) && line[i] == ' ' {
		i++
	}
	if i >= len(line) || (line[i] != '`' && line[i] != '~') {
		return 0, 0
	}
	c := line[i]
	n := 0
	for i+n < len(line) && line[i+n] == c {
		n++
	}
	if n < 3 {
		return 0, 0
	}
	return c, n
}

func isFenceClose(line []byte, marker byte, n int) bool {
	c, run := fenceOpen(line)
	if c != marker || run < n {
		return false
	}
	trimmed := bytes.TrimSpace(line)
	return len(bytes.Trim(trimmed, string(marker))) == 0
}

// paragraphEnd returns the start of the first blank line or fence opener
// after pos, or len(src).
func paragraphEnd(src []byte, pos int) int {
	for i := lineEnd(src, pos); i < len(src); i = lineEnd(src, i) {
		line := src[i:lineEnd(src, i)]
		if len(bytes.TrimSpace(line)) == 0 {
			return i
		}
		if _, n := fenceOpen(line); n > 0 {
			return i
		}
	}
	return len(src)
}

// lineEnd returns the index just past the newline ending the line at pos.
func lineEnd(src []byte, pos int) int {
	i := bytes.IndexByte(src[pos:], '\n')
	if i < 0 {
		return len(src)
	}
	return pos + i + 1
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isNameByte(c byte) bool {
	return c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isAttrByte(c byte) bool {
	return c == '-' || c == ':' || isNameByte(c) && c != '.'
}
