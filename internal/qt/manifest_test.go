package qt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/qt"
)

func TestXMLManifest_Parse(t *testing.T) {
	manifest := `<!DOCTYPE RCC><RCC version="1.0">
<qresource prefix="/">
    <file>icons/open.png</file>
    <file alias="close">icons/close.png</file>
</qresource>
</RCC>`

	files, err := qt.XMLManifest{}.Parse(strings.NewReader(manifest))
	require.NoError(t, err)
	assert.Equal(t, []string{"icons/open.png", "icons/close.png"}, files)
}

func TestXMLManifest_Parse_ChunkedCharData(t *testing.T) {
	// CDATA sections split the character data of one element into several
	// chunks; the chunks must be concatenated into one path.
	manifest := `<RCC><qresource><file>a<![CDATA[&]]>b.png</file></qresource></RCC>`

	files, err := qt.XMLManifest{}.Parse(strings.NewReader(manifest))
	require.NoError(t, err)
	assert.Equal(t, []string{"a&b.png"}, files)
}

func TestXMLManifest_Parse_Malformed(t *testing.T) {
	_, err := qt.XMLManifest{}.Parse(strings.NewReader(`<RCC><qresource>`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrManifestParse)
}

func TestXMLManifest_Parse_Empty(t *testing.T) {
	files, err := qt.XMLManifest{}.Parse(strings.NewReader(`<RCC/>`))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSynthesizeManifest(t *testing.T) {
	got := qt.SynthesizeManifest([]string{"de.qm", "fr.qm"})

	want := `<!DOCTYPE RCC><RCC version="1.0">
<qresource>
<file>de.qm</file>
<file>fr.qm</file>
</qresource>
</RCC>`
	assert.Equal(t, want, string(got))
}

func TestSynthesizeManifest_RoundTrip(t *testing.T) {
	paths := []string{"de.qm", "i18n/fr.qm"}

	files, err := qt.XMLManifest{}.Parse(strings.NewReader(string(qt.SynthesizeManifest(paths))))
	require.NoError(t, err)
	assert.Equal(t, paths, files)
}
