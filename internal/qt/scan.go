package qt

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
)

// directiveExt marks includes that name a generated meta-object artifact
// instead of an existing file.
const directiveExt = ".moc"

var includeRe = regexp.MustCompile(`^\s*#\s*include\s*["<]([^">]+)[">]`)

// ScanSource extracts the include dependencies of a compiled source. Includes
// resolving against the given directories (searched in order) become nodes;
// the rest are reported as raw names. Names with the generated-artifact
// extension are always raw, even when a file from a previous build exists:
// they identify a generation directive, not an input.
func ScanSource(src *domain.Node, dirs []*domain.Node) ([]*domain.Node, []string, error) {
	data, err := src.Read()
	if err != nil {
		return nil, nil, err
	}

	var (
		nodes     []*domain.Node
		names     []string
		seenNode  = map[*domain.Node]struct{}{}
		seenName  = map[string]struct{}{}
	)

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		m := includeRe.FindSubmatch(sc.Bytes())
		if m == nil {
			continue
		}
		name := string(m[1])

		if !strings.HasSuffix(name, directiveExt) {
			if n := resolve(name, dirs); n != nil {
				if _, ok := seenNode[n]; !ok {
					seenNode[n] = struct{}{}
					nodes = append(nodes, n)
				}
				continue
			}
		}
		if _, ok := seenName[name]; !ok {
			seenName[name] = struct{}{}
			names = append(names, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return nodes, names, nil
}

func resolve(name string, dirs []*domain.Node) *domain.Node {
	for _, dir := range dirs {
		if n := dir.Find(name); n != nil {
			return n
		}
	}
	return nil
}
