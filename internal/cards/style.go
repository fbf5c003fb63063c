package cards

import (
	"strings"

	"github.com/aymerick/douceur/parser"
	"github.com/gorilla/css/scanner"
	"golang.org/x/net/html"
)

// inlineStyle is an ordered view of an element's style attribute.
type inlineStyle struct {
	props []styleProp
}

// styleProp is one declaration. Declarations that do not parse keep their
// source text in raw and are written back unchanged.
type styleProp struct {
	name  string
	value string
	raw   string
}

func readStyle(n *html.Node) *inlineStyle {
	s := &inlineStyle{}
	for _, a := range n.Attr {
		if a.Key != "style" {
			continue
		}
		chunks, ok := splitDeclarations(a.Val)
		if !ok {
			if raw := strings.TrimSpace(a.Val); raw != "" {
				s.props = append(s.props, styleProp{raw: raw})
			}
			continue
		}
		for _, chunk := range chunks {
			s.props = append(s.props, parseDeclaration(chunk))
		}
	}
	return s
}

// splitDeclarations cuts a declaration list at top-level semicolons. A
// semicolon inside a string or url() is part of its token and never splits.
func splitDeclarations(text string) ([]string, bool) {
	var chunks []string
	var cur strings.Builder
	flush := func() {
		if chunk := strings.TrimSpace(cur.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		cur.Reset()
	}

	sc := scanner.New(text)
	for {
		tok := sc.Next()
		switch {
		case tok.Type == scanner.TokenEOF:
			flush()
			return chunks, true
		case tok.Type == scanner.TokenError:
			return nil, false
		case tok.Type == scanner.TokenChar && tok.Value == ";":
			flush()
		default:
			cur.WriteString(tok.Value)
		}
	}
}

func parseDeclaration(chunk string) styleProp {
	//the parser only completes a declaration at its semicolon
	decls, err := parser.ParseDeclarations(chunk + ";")
	if err != nil || len(decls) != 1 || decls[0].Property == "" || decls[0].Value == "" {
		return styleProp{raw: chunk}
	}
	value := decls[0].Value
	if decls[0].Important {
		value += " !important"
	}
	return styleProp{name: strings.ToLower(decls[0].Property), value: value}
}

// get returns the declared value, the last one winning as in CSS.
func (s *inlineStyle) get(name string) string {
	value := ""
	for _, p := range s.props {
		if p.name == name {
			value = p.value
		}
	}
	return value
}

// set replaces or appends a property; an empty value removes it, like
// assigning "" to element.style.X in the browser. Duplicates collapse into
// the first declaration.
func (s *inlineStyle) set(name, value string) {
	kept := s.props[:0]
	placed := false
	for _, p := range s.props {
		if p.name != name {
			kept = append(kept, p)
			continue
		}
		if value != "" && !placed {
			p.value = value
			kept = append(kept, p)
			placed = true
		}
	}
	s.props = kept
	if value != "" && !placed {
		s.props = append(s.props, styleProp{name: name, value: value})
	}
}

func (s *inlineStyle) String() string {
	parts := make([]string, len(s.props))
	for i, p := range s.props {
		if p.raw != "" {
			parts[i] = p.raw
			continue
		}
		parts[i] = p.name + ": " + p.value
	}
	return strings.Join(parts, "; ")
}

// writeStyle stores s back on n, dropping the attribute when nothing is left.
func writeStyle(n *html.Node, s *inlineStyle) {
	val := s.String()
	for i, a := range n.Attr {
		if a.Key != "style" {
			continue
		}
		if val == "" {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
		} else {
			n.Attr[i].Val = val
		}
		return
	}
	if val != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: val})
	}
}

// setStyle is the one-property convenience form of readStyle/set/writeStyle.
func setStyle(n *html.Node, props ...string) {
	s := readStyle(n)
	for i := 0; i+1 < len(props); i += 2 {
		s.set(props[i], props[i+1])
	}
	writeStyle(n, s)
}

// StyleProperty returns the value of one inline style property of n.
func StyleProperty(n *html.Node, name string) string {
	return readStyle(n).get(strings.ToLower(name))
}
