package qt

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
)

// ManifestParser extracts the referenced file paths from a resource
// manifest.
type ManifestParser interface {
	Parse(r io.Reader) ([]string, error)
}

// XMLManifest parses resource manifests with a streaming XML tokenizer.
// Character data inside a file element may arrive in chunks; all chunks are
// concatenated before the path is recorded.
type XMLManifest struct{}

var _ ManifestParser = XMLManifest{}

// Parse implements ManifestParser.
func (XMLManifest) Parse(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		files  []string
		buf    strings.Builder
		inFile bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, zerr.Wrap(domain.ErrManifestParse, err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "file" {
				inFile = true
				buf.Reset()
			}
		case xml.CharData:
			if inFile {
				buf.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "file" {
				files = append(files, buf.String())
				inFile = false
			}
		}
	}
	return files, nil
}

// SynthesizeManifest renders a minimal resource manifest referencing the
// given paths. Used to embed compiled translation catalogs without a
// hand-written manifest.
func SynthesizeManifest(paths []string) []byte {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE RCC><RCC version="1.0">` + "\n<qresource>\n")
	for _, p := range paths {
		b.WriteString("<file>" + p + "</file>\n")
	}
	b.WriteString("</qresource>\n</RCC>")
	return []byte(b.String())
}
