package resx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResx = `<?xml version="1.0" encoding="utf-8"?>
<root>
  <resheader name="resmimetype">
    <value>text/microsoft-resx</value>
  </resheader>
  <resheader name="version">
    <value>2.0</value>
  </resheader>
  <assembly alias="System.Windows.Forms" name="System.Windows.Forms, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089" />
  <data name="Hello" xml:space="preserve">
    <value>Bonjour</value>
    <comment>Greeting on the start page</comment>
  </data>
  <data name="Icon" type="System.Resources.ResXFileRef, System.Windows.Forms">
    <value>..\Resources\icon.png;System.Drawing.Bitmap, System.Drawing, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b03f5f7f11d50a3a</value>
  </data>
  <data name="Count" type="System.Int32, mscorlib">
    <value>42</value>
  </data>
  <data name="Blank" xml:space="preserve">
    <value />
  </data>
</root>
`

func TestParse_Basic(t *testing.T) {
	f, err := Parse([]byte(sampleResx))
	require.NoError(t, err)
	require.Len(t, f.Nodes, 4)

	hello := f.Get("Hello")
	require.NotNil(t, hello)
	assert.Equal(t, "Bonjour", hello.Value)
	assert.Equal(t, "Greeting on the start page", hello.Comment)
	assert.False(t, hello.IsFileRef())

	count := f.Get("Count")
	require.NotNil(t, count)
	assert.Equal(t, "42", count.Value)
	assert.Equal(t, "System.Int32, mscorlib", count.Type)

	blank := f.Get("Blank")
	require.NotNil(t, blank)
	assert.Equal(t, "", blank.Value)

	assert.Len(t, f.Headers, 2)
	require.Len(t, f.Assemblies, 1)
	assert.Equal(t, "System.Windows.Forms", f.Assemblies[0].Alias)
}

func TestParse_FileRef(t *testing.T) {
	f, err := Parse([]byte(sampleResx))
	require.NoError(t, err)

	icon := f.Get("Icon")
	require.NotNil(t, icon)
	require.True(t, icon.IsFileRef())
	assert.Equal(t, `..\Resources\icon.png`, icon.FileRef.FileName)
	assert.True(t, strings.HasPrefix(icon.FileRef.TypeName, "System.Drawing.Bitmap"))
	assert.True(t, strings.HasPrefix(string(icon.Raw), `<data name="Icon"`))
	assert.True(t, strings.HasSuffix(string(icon.Raw), `</data>`))
}

func TestParseFileRef(t *testing.T) {
	cases := []struct {
		in   string
		want FileRef
	}{
		{in: `a.png;System.Drawing.Bitmap, System.Drawing`, want: FileRef{FileName: "a.png", TypeName: "System.Drawing.Bitmap, System.Drawing"}},
		{in: `text.txt;System.String, mscorlib;utf-8`, want: FileRef{FileName: "text.txt", TypeName: "System.String, mscorlib", Encoding: "utf-8"}},
		{in: `"odd;name.bin";System.Byte[], mscorlib`, want: FileRef{FileName: "odd;name.bin", TypeName: "System.Byte[], mscorlib"}},
	}
	for _, tc := range cases {
		got := ParseFileRef(tc.in)
		assert.Equal(t, tc.want, *got, "ParseFileRef(%q)", tc.in)
		assert.Equal(t, tc.in, got.String())
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`<?xml version="1.0"?><resources></resources>`))
	require.Error(t, err)

	_, err = Parse([]byte(`<?xml version="1.0"?>`))
	require.ErrorIs(t, err, ErrNoRoot)

	_, err = Parse([]byte(`<root><data name="x"><value>unterminated</data></root>`))
	require.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	f, err := Parse([]byte(sampleResx))
	require.NoError(t, err)

	out := f.Marshal()
	g, err := Parse(out)
	require.NoError(t, err)

	require.Len(t, g.Nodes, len(f.Nodes))
	for i, n := range f.Nodes {
		assert.Equal(t, n.Name, g.Nodes[i].Name)
		assert.Equal(t, n.Value, g.Nodes[i].Value)
		assert.Equal(t, n.Comment, g.Nodes[i].Comment)
		assert.Equal(t, n.Type, g.Nodes[i].Type)
	}
	assert.Equal(t, f.Headers, g.Headers)
	assert.Equal(t, f.Assemblies, g.Assemblies)
}

func TestMarshal_FileRefVerbatim(t *testing.T) {
	f, err := Parse([]byte(sampleResx))
	require.NoError(t, err)
	raw := string(f.Get("Icon").Raw)

	out := string(f.Marshal())
	assert.Contains(t, out, raw)
}

func TestMarshal_Escaping(t *testing.T) {
	f := NewFile()
	f.Nodes = []*Node{{Name: `a"b`, Value: "x < y & z\nline two", Comment: "<note>"}}

	g, err := Parse(f.Marshal())
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, `a"b`, g.Nodes[0].Name)
	assert.Equal(t, "x < y & z\nline two", g.Nodes[0].Value)
	assert.Equal(t, "<note>", g.Nodes[0].Comment)
	assert.Equal(t, DefaultHeaders, g.Headers)
}

func TestValidText(t *testing.T) {
	assert.True(t, ValidText("tab\tnew\nline\r ok é 😀"))
	assert.False(t, ValidText("vertical\x0Btab"))
	assert.False(t, ValidText("nul\x00"))
	assert.False(t, ValidText("\uFFFE"))
}

func TestMarshal_DropsCharactersXMLForbids(t *testing.T) {
	f := NewFile()
	f.Nodes = []*Node{{Name: "K\x01", Value: "a\x0Bb\x00c", Comment: "n\x1Fote"}}

	g, err := Parse(f.Marshal())
	require.NoError(t, err, "the written file must stay readable")
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "K", g.Nodes[0].Name)
	assert.Equal(t, "abc", g.Nodes[0].Value)
	assert.Equal(t, "note", g.Nodes[0].Comment)
}

func TestWriteFileAndCodec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "Strings.resx")

	f := NewFile()
	f.Nodes = []*Node{{Name: "Hello", Value: "Hi"}}

	var codec Codec = FileCodec{}
	require.NoError(t, codec.WriteFile(path, f))

	_, err := os.Stat(path)
	require.NoError(t, err)

	g, err := codec.ReadFile(path)
	require.NoError(t, err)
	require.NotNil(t, g.Get("Hello"))
	assert.Equal(t, "Hi", g.Get("Hello").Value)

	_, err = codec.ReadFile(filepath.Join(dir, "missing.resx"))
	require.Error(t, err)
}

func TestWithNodesKeepsSkeleton(t *testing.T) {
	f, err := Parse([]byte(sampleResx))
	require.NoError(t, err)

	g := f.WithNodes(nil)
	assert.Empty(t, g.Nodes)
	assert.Equal(t, f.Headers, g.Headers)
	assert.Len(t, f.Nodes, 4, "original must not be modified")
}
