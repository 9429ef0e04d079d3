package task

import (
	"fmt"
	"regexp"
	"strings"
)

var inlineVar = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// Expand resolves the command template into a concrete argv.
//
// Template words:
//
//	${SRC}          all input paths
//	${TGT}          all output paths
//	${VAR}          every value of VAR (dropped when empty)
//	${PAT:VAR}      the pattern held by PAT applied to every value of VAR
//	other           literal, with inline ${VAR} references substituted
func (t *Exec) Expand() ([]string, error) {
	argv := make([]string, 0, len(t.template))

	for _, word := range t.template {
		switch {
		case word == "${SRC}":
			for _, n := range t.inputs {
				argv = append(argv, n.Abs())
			}
		case word == "${TGT}":
			for _, n := range t.outputs {
				argv = append(argv, n.Abs())
			}
		case strings.HasPrefix(word, "${") && strings.HasSuffix(word, "}") && !strings.Contains(word[2:len(word)-1], "$"):
			inner := word[2 : len(word)-1]
			if pat, values, ok := strings.Cut(inner, ":"); ok {
				argv = append(argv, t.applyPattern(pat, values)...)
			} else {
				argv = append(argv, t.env.Get(inner)...)
			}
		default:
			argv = append(argv, inlineVar.ReplaceAllStringFunc(word, func(m string) string {
				return t.env.First(m[2 : len(m)-1])
			}))
		}
	}

	return argv, nil
}

// applyPattern formats every value of the variable with the pattern held by
// the pattern variable, e.g. MOCCPPPATH_ST="-I%s" over INCPATHS.
func (t *Exec) applyPattern(patVar, valVar string) []string {
	pat := t.env.First(patVar)
	values := t.env.Get(valVar)
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.Contains(pat, "%s") {
			out = append(out, fmt.Sprintf(pat, v))
		} else {
			out = append(out, pat+v)
		}
	}
	return out
}
