package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/folio/pkg/core"
)

// Shortcodes come in two forms, {{< name >}} and {{% name %}}. The closing
// delimiter is captured separately so a mismatch can be reported.
var directivePattern = regexp.MustCompile(`(?s)\{\{([<%])(.*?)([>%])\}\}`)

var directiveName = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_./-]*$`)

// requiredParams lists the named parameters a directive cannot do without.
var requiredParams = map[string][]string{
	"figure": {"src"},
}

// scanDirectives extracts generator directives from body, skipping anything
// inside code. Image-bearing directives also yield references.
func scanDirectives(body string, code []span) ([]core.Directive, []core.Reference, []core.Issue) {
	var (
		directives []core.Directive
		refs       []core.Reference
		issues     []core.Issue
		open       []string
		covered    []span
	)

	malformed := func(raw, format string, args ...any) {
		issues = append(issues, core.Issue{
			Severity: core.SeverityWarning,
			Field:    "body",
			Code:     core.CodeDirectiveMalformed,
			Message:  fmt.Sprintf("%s: %s", fmt.Sprintf(format, args...), abbreviate(raw)),
		})
	}

	for _, m := range directivePattern.FindAllStringSubmatchIndex(body, -1) {
		start, stop := m[0], m[1]
		if inCode(start, code) {
			continue
		}
		covered = append(covered, span{start: start, stop: stop})

		raw := body[start:stop]
		opener, closer := body[m[2]:m[3]], body[m[6]:m[7]]
		inner := strings.TrimSpace(body[m[4]:m[5]])

		// {{</* name */>}} is an escaped, literal shortcode.
		if strings.HasPrefix(inner, "/*") && strings.HasSuffix(inner, "*/") {
			continue
		}
		if (opener == "<") != (closer == ">") {
			malformed(raw, "mismatched delimiters %q and %q", "{{"+opener, closer+"}}")
			continue
		}
		if strings.Contains(inner, "{{") {
			malformed(raw, "unterminated directive")
			continue
		}

		if strings.HasPrefix(inner, "/") {
			name := strings.TrimSpace(inner[1:])
			if !closeDirective(&open, name) {
				malformed(raw, "closing %q has no matching opening directive", name)
			}
			continue
		}

		selfClosing := strings.HasSuffix(inner, "/")
		inner = strings.TrimSpace(strings.TrimSuffix(inner, "/"))

		tokens, err := splitParams(inner)
		if err != nil {
			malformed(raw, "%v", err)
			continue
		}
		if len(tokens) == 0 || !directiveName.MatchString(tokens[0]) {
			malformed(raw, "missing directive name")
			continue
		}

		d := core.Directive{Name: tokens[0], Raw: raw}
		for _, tok := range tokens[1:] {
			if key, value, ok := strings.Cut(tok, "="); ok && isParamKey(key) {
				if d.Params == nil {
					d.Params = make(map[string]string)
				}
				d.Params[key] = unquote(value)
				continue
			}
			d.Args = append(d.Args, unquote(tok))
		}

		for _, key := range requiredParams[d.Name] {
			if strings.TrimSpace(d.Params[key]) == "" {
				malformed(raw, "%s directive requires %q", d.Name, key)
			}
		}
		if d.Name == "figure" && d.Params["src"] != "" {
			refs = append(refs, newReference(core.RefImage, d.Params["src"], d.Params["title"]))
		}

		directives = append(directives, d)
		if !selfClosing {
			open = append(open, d.Name)
		}
	}

	for _, delim := range []string{"{{<", "{{%"} {
		for offset := 0; ; {
			idx := strings.Index(body[offset:], delim)
			if idx < 0 {
				break
			}
			pos := offset + idx
			offset = pos + len(delim)
			if inCode(pos, code) || inCode(pos, covered) {
				continue
			}
			malformed(lineAt(body, pos), "unterminated directive")
		}
	}

	return directives, refs, issues
}

// closeDirective pops the innermost open directive called name. Directives
// opened after it are treated as inline ones that never needed closing.
func closeDirective(open *[]string, name string) bool {
	stack := *open
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == name {
			*open = stack[:i]
			return true
		}
	}
	return false
}

// splitParams splits a directive on whitespace, keeping quoted values whole.
func splitParams(s string) ([]string, error) {
	var (
		tokens []string
		cur    strings.Builder
		quote  rune
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '`':
			quote = r
			cur.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quoted value")
	}
	flush()
	return tokens, nil
}

func isParamKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if !(r == '_' || r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '`') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func lineAt(body string, pos int) string {
	end := strings.IndexByte(body[pos:], '\n')
	if end < 0 {
		return body[pos:]
	}
	return body[pos : pos+end]
}

func abbreviate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return s
}
