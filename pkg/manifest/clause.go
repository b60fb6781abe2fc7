package manifest

import (
	"bufio"
	"io"
	"strings"
)

// Param is one attribute (key=value) or directive (key:=value) of a clause.
type Param struct {
	Key       string
	Value     string
	Directive bool
}

// Clause is one comma-separated element of an OSGi header, for example
//
//	org.example.api;version="[1.0,2.0)";resolution:=optional
type Clause struct {
	Names  []string
	Params []Param
}

// Attr returns the value of the named attribute.
func (c Clause) Attr(key string) (string, bool) {
	return c.param(key, false)
}

// Directive returns the value of the named directive.
func (c Clause) Directive(key string) (string, bool) {
	return c.param(key, true)
}

func (c Clause) param(key string, directive bool) (string, bool) {
	for _, p := range c.Params {
		if p.Key == key && p.Directive == directive {
			return p.Value, true
		}
	}
	return "", false
}

// String renders the clause. Values containing separators are quoted.
func (c Clause) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(c.Names, ";"))
	for _, p := range c.Params {
		b.WriteByte(';')
		b.WriteString(p.Key)
		if p.Directive {
			b.WriteString(":=")
		} else {
			b.WriteByte('=')
		}
		if strings.ContainsAny(p.Value, ",;=:[]() ") {
			b.WriteString(`"` + p.Value + `"`)
		} else {
			b.WriteString(p.Value)
		}
	}
	return b.String()
}

// SplitClauses splits a header on commas outside double quotes. Blank
// clauses are dropped and surrounding whitespace trimmed.
func SplitClauses(header string) []string {
	return splitQuoted(header, ',')
}

// ParseClause parses a single clause. Leading elements without '=' are
// names; the rest are attributes and directives. Quotes around values are
// removed.
func ParseClause(s string) Clause {
	var c Clause
	for _, part := range splitQuoted(s, ';') {
		eq := strings.Index(part, "=")
		if eq < 0 {
			if len(c.Params) == 0 {
				c.Names = append(c.Names, part)
			}
			continue
		}
		p := Param{Key: strings.TrimSpace(part[:eq]), Value: strings.TrimSpace(part[eq+1:])}
		if strings.HasSuffix(p.Key, ":") {
			p.Key = strings.TrimSpace(strings.TrimSuffix(p.Key, ":"))
			p.Directive = true
		}
		p.Value = strings.Trim(p.Value, `"`)
		c.Params = append(c.Params, p)
	}
	return c
}

// ParseHeader parses every clause of a header.
func ParseHeader(header string) []Clause {
	raw := SplitClauses(header)
	out := make([]Clause, 0, len(raw))
	for _, r := range raw {
		out = append(out, ParseClause(r))
	}
	return out
}

func splitQuoted(s string, sep byte) []string {
	var out []string
	start, quoted := 0, false
	flush := func(end int) {
		if part := strings.TrimSpace(s[start:end]); part != "" {
			out = append(out, part)
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case sep:
			if !quoted {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(s))
	return out
}

// ParseManifest reads the main section of a jar manifest. Continuation
// lines (starting with a single space) are joined to the previous header.
func ParseManifest(r io.Reader) (map[string]string, error) {
	headers := make(map[string]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var key string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			break // end of main section
		}
		if strings.HasPrefix(line, " ") {
			if key != "" {
				headers[key] += line[1:]
			}
			continue
		}
		colon := strings.Index(line, ":")
		if colon <= 0 {
			key = ""
			continue
		}
		key = line[:colon]
		headers[key] = strings.TrimPrefix(line[colon+1:], " ")
	}
	return headers, sc.Err()
}

// SymbolicName returns the Bundle-SymbolicName without directives, or "".
func SymbolicName(headers map[string]string) string {
	v := headers[KeyBundleSymbolicName]
	if v == "" {
		return ""
	}
	c := ParseClause(v)
	if len(c.Names) == 0 {
		return ""
	}
	return c.Names[0]
}
