package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/p-n-ai/pai-courses/internal/document"
)

// Builtins returns a registry with the server-side components plus the named
// client-side widgets, whose props are forwarded untouched.
func Builtins(passthrough ...string) *MapRegistry {
	r := NewMapRegistry()
	r.Register("AnchorDiscriminatorCalculator", ComponentFunc(discriminatorCalculator))
	r.Register("Callout", ComponentFunc(callout))
	for _, name := range passthrough {
		r.Register(name, Passthrough)
	}
	return r
}

// Passthrough renders a reference as-is. The client owns the widget.
var Passthrough = ComponentFunc(func(document.Node) (Node, error) {
	return Node{}, nil
})

// discriminatorCalculator precomputes the 8-byte Anchor discriminator for the
// name in "value". displayMode picks the namespace: instruction (default),
// account or event.
func discriminatorCalculator(ref document.Node) (Node, error) {
	value, ok := ref.Props.Get("value")
	if !ok || strings.TrimSpace(value) == "" {
		return Node{}, fmt.Errorf("missing prop %q", "value")
	}
	mode, _ := ref.Props.Get("displayMode")

	var preimage string
	switch mode {
	case "", "instruction":
		preimage = "global:" + snakeCase(value)
	case "account":
		preimage = "account:" + pascalCase(value)
	case "event":
		preimage = "event:" + pascalCase(value)
	default:
		return Node{}, fmt.Errorf("unsupported displayMode %q", mode)
	}

	disc := Discriminator(preimage)
	bytes := make([]int, len(disc))
	for i, b := range disc {
		bytes[i] = int(b)
	}
	return Node{Data: map[string]any{
		"preimage":      preimage,
		"discriminator": bytes,
		"hex":           hex.EncodeToString(disc[:]),
	}}, nil
}

// Discriminator returns the first 8 bytes of sha256(preimage).
func Discriminator(preimage string) [8]byte {
	sum := sha256.Sum256([]byte(preimage))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

var calloutTypes = map[string]bool{"info": true, "warning": true, "danger": true, "tip": true}

func callout(ref document.Node) (Node, error) {
	variant, ok := ref.Props.Get("type")
	if !ok {
		variant = "info"
	}
	if !calloutTypes[variant] {
		return Node{}, fmt.Errorf("unsupported callout type %q", variant)
	}
	return Node{Data: map[string]any{"variant": variant}}, nil
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(s))
	for i, r := range runes {
		switch {
		case r == '-' || r == ' ':
			b.WriteByte('_')
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func pascalCase(s string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' }) {
		r := []rune(part)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	return b.String()
}
