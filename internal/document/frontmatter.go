package document

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FrontMatter is the optional YAML header of a lesson file.
type FrontMatter struct {
	Title       string `yaml:"title" json:"title,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
	Order       int    `yaml:"order" json:"order,omitempty"`
}

var fenceLine = []byte("---")

// SplitFrontMatter separates a leading "---" YAML block from the body. It
// returns the number of lines consumed so body positions can be reported
// against the original file.
func SplitFrontMatter(src []byte) (FrontMatter, []byte, int, error) {
	var fm FrontMatter
	first := lineEnd(src, 0)
	if !bytes.Equal(bytes.TrimRight(src[:first], "\r\n"), fenceLine) {
		return fm, src, 0, nil
	}

	lines := 1
	for pos := first; pos < len(src); {
		end := lineEnd(src, pos)
		lines++
		if bytes.Equal(bytes.TrimRight(src[pos:end], "\r\n"), fenceLine) {
			if err := yaml.Unmarshal(src[first:pos], &fm); err != nil {
				return fm, nil, 0, &MalformedError{Line: 2, Column: 1, Reason: fmt.Sprintf("front matter: %v", err)}
			}
			return fm, src[end:], lines, nil
		}
		pos = end
	}
	return fm, nil, 0, &MalformedError{Line: 1, Column: 1, Reason: "unclosed front matter"}
}

// ParseDocument splits off front matter and parses the remaining body.
func ParseDocument(src []byte) (FrontMatter, Body, error) {
	fm, rest, skipped, err := SplitFrontMatter(src)
	if err != nil {
		return fm, nil, err
	}
	body, err := parseAt(rest, skipped+1)
	if err != nil {
		return fm, nil, err
	}
	return fm, body, nil
}
