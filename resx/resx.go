// Package resx implements reading and writing of .resx resource files.
//
// A .resx file is an XML document with a <root> element holding:
//   - <resheader>  : reader/writer/version headers
//   - <assembly>   : assembly aliases referenced by typed entries
//   - <data>       : one resource: name, optional type/mimetype, <value>, <comment>
//   - <xsd:schema> and <metadata>: carried through untouched
//
// A <data> entry whose type is System.Resources.ResXFileRef points at an
// external asset instead of holding its value inline. Such entries are
// opaque here: their original bytes are kept and written back verbatim.
package resx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the canonical .resx file extension.
const Ext = ".resx"

// fileRefType is the type-name prefix marking a file-reference entry.
const fileRefType = "System.Resources.ResXFileRef"

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Node is a single <data> entry.
type Node struct {
	// Name is the resource key (attribute name="…").
	Name string
	// Comment is the optional <comment> text.
	Comment string
	// Value is the <value> text. For typed entries it is the serialized form.
	Value string
	// Type is the type="…" attribute; empty for plain strings.
	Type string
	// MimeType is the mimetype="…" attribute (base64 serialized objects).
	MimeType string
	// FileRef is set when the entry points at an external file.
	FileRef *FileRef
	// Raw holds the element's original bytes when it was read from a file.
	// Marshal emits Raw unchanged for file references.
	Raw []byte
}

// IsFileRef reports whether the node is a file reference.
func (n *Node) IsFileRef() bool { return n.FileRef != nil }

// FileRef is the decoded value of a ResXFileRef entry:
// "path;type name[;encoding]".
type FileRef struct {
	FileName string
	TypeName string
	Encoding string
}

// Header is a <resheader name="…"><value>…</value></resheader> pair.
type Header struct {
	Name  string
	Value string
}

// Assembly is an <assembly alias="…" name="…"/> declaration.
type Assembly struct {
	Alias string
	Name  string
}

// File represents a parsed .resx file.
type File struct {
	// Nodes in document order.
	Nodes []*Node
	// Headers in document order. Defaults are written when empty.
	Headers []Header
	// Assemblies in document order.
	Assemblies []Assembly
	// Schema is the raw <xsd:schema> element, if any.
	Schema []byte
	// Extra holds raw bytes of other elements (e.g. <metadata>).
	Extra [][]byte
}

// DefaultHeaders are the headers written by the standard resource tooling.
var DefaultHeaders = []Header{
	{Name: "resmimetype", Value: "text/microsoft-resx"},
	{Name: "version", Value: "2.0"},
	{Name: "reader", Value: "System.Resources.ResXResourceReader, System.Windows.Forms, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089"},
	{Name: "writer", Value: "System.Resources.ResXResourceWriter, System.Windows.Forms, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089"},
}

// NewFile returns an empty file with default headers.
func NewFile() *File {
	return &File{Headers: append([]Header(nil), DefaultHeaders...)}
}

// WithNodes returns a copy of f that keeps headers, assemblies, schema and
// extra elements but holds nodes instead of f.Nodes.
func (f *File) WithNodes(nodes []*Node) *File {
	cp := *f
	cp.Nodes = nodes
	return &cp
}

// Get returns the first node named name, or nil.
func (f *File) Get(name string) *Node {
	for _, n := range f.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ErrNoRoot is returned for documents without a <root> element.
var ErrNoRoot = errors.New("missing <root> element")

// ParseFile reads and parses a .resx file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// dataElement mirrors the <data> element for DecodeElement.
type dataElement struct {
	Name     string `xml:"name,attr"`
	Type     string `xml:"type,attr"`
	MimeType string `xml:"mimetype,attr"`
	Value    string `xml:"value"`
	Comment  string `xml:"comment"`
}

type headerElement struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

// Parse parses .resx data.
func Parse(data []byte) (*File, error) {
	f := &File{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	seenRoot := false
	depth := 0

	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if t.Name.Local != "root" {
					return nil, fmt.Errorf("unexpected document element <%s>", t.Name.Local)
				}
				seenRoot = true
				depth++
				continue
			}

			switch t.Name.Local {
			case "data":
				var el dataElement
				if err := dec.DecodeElement(&el, &t); err != nil {
					return nil, fmt.Errorf("reading <data name=%q>: %w", attr(t, "name"), err)
				}
				n := &Node{
					Name:     el.Name,
					Comment:  el.Comment,
					Value:    el.Value,
					Type:     el.Type,
					MimeType: el.MimeType,
					Raw:      clone(data[start:dec.InputOffset()]),
				}
				if strings.HasPrefix(el.Type, fileRefType) {
					n.FileRef = ParseFileRef(el.Value)
				}
				f.Nodes = append(f.Nodes, n)

			case "resheader":
				var el headerElement
				if err := dec.DecodeElement(&el, &t); err != nil {
					return nil, fmt.Errorf("reading <resheader name=%q>: %w", attr(t, "name"), err)
				}
				f.Headers = append(f.Headers, Header{Name: el.Name, Value: el.Value})

			case "assembly":
				f.Assemblies = append(f.Assemblies, Assembly{Alias: attr(t, "alias"), Name: attr(t, "name")})
				if err := dec.Skip(); err != nil {
					return nil, err
				}

			case "schema":
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				f.Schema = clone(data[start:dec.InputOffset()])

			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				f.Extra = append(f.Extra, clone(data[start:dec.InputOffset()]))
			}

		case xml.EndElement:
			depth--
		}
	}

	if !seenRoot {
		return nil, ErrNoRoot
	}
	return f, nil
}

// attr returns the value of the local attribute name, or "".
func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

// ParseFileRef decodes "path;type[;encoding]". The path may be quoted when it
// contains a semicolon.
func ParseFileRef(value string) *FileRef {
	value = strings.TrimSpace(value)
	ref := &FileRef{}
	rest := value
	if strings.HasPrefix(value, `"`) {
		if end := strings.Index(value[1:], `"`); end >= 0 {
			ref.FileName = value[1 : end+1]
			rest = strings.TrimPrefix(value[end+2:], ";")
		}
	} else {
		parts := strings.SplitN(value, ";", 2)
		ref.FileName = parts[0]
		rest = ""
		if len(parts) == 2 {
			rest = parts[1]
		}
	}
	// The type name itself contains commas but no semicolons.
	if idx := strings.IndexByte(rest, ';'); idx >= 0 {
		ref.TypeName = rest[:idx]
		ref.Encoding = rest[idx+1:]
	} else {
		ref.TypeName = rest
	}
	return ref
}

// String encodes the reference in the form ParseFileRef reads.
func (r *FileRef) String() string {
	name := r.FileName
	if strings.Contains(name, ";") {
		name = `"` + name + `"`
	}
	s := name + ";" + r.TypeName
	if r.Encoding != "" {
		s += ";" + r.Encoding
	}
	return s
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// WriteFile serialises f and writes it to path, creating parent directories.
func (f *File) WriteFile(path string) error {
	data := f.Marshal()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Marshal produces the XML document.
func (f *File) Marshal() []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<root>\n")

	if len(f.Schema) > 0 {
		b.WriteString("  ")
		b.Write(f.Schema)
		b.WriteByte('\n')
	}

	headers := f.Headers
	if len(headers) == 0 {
		headers = DefaultHeaders
	}
	for _, h := range headers {
		fmt.Fprintf(&b, "  <resheader name=\"%s\">\n    <value>%s</value>\n  </resheader>\n",
			escapeAttr(h.Name), escapeText(h.Value))
	}

	for _, a := range f.Assemblies {
		fmt.Fprintf(&b, "  <assembly alias=\"%s\" name=\"%s\" />\n", escapeAttr(a.Alias), escapeAttr(a.Name))
	}

	for _, raw := range f.Extra {
		b.WriteString("  ")
		b.Write(raw)
		b.WriteByte('\n')
	}

	for _, n := range f.Nodes {
		writeNode(&b, n)
	}

	b.WriteString("</root>\n")
	return []byte(b.String())
}

func writeNode(b *strings.Builder, n *Node) {
	if n.IsFileRef() && len(n.Raw) > 0 {
		b.WriteString("  ")
		b.Write(n.Raw)
		b.WriteByte('\n')
		return
	}

	fmt.Fprintf(b, "  <data name=\"%s\"", escapeAttr(n.Name))
	if n.Type != "" {
		fmt.Fprintf(b, " type=\"%s\"", escapeAttr(n.Type))
	}
	if n.MimeType != "" {
		fmt.Fprintf(b, " mimetype=\"%s\"", escapeAttr(n.MimeType))
	}
	if n.Type == "" && n.MimeType == "" {
		b.WriteString(` xml:space="preserve"`)
	}
	b.WriteString(">\n")

	value := n.Value
	if n.IsFileRef() {
		value = n.FileRef.String()
	}
	fmt.Fprintf(b, "    <value>%s</value>\n", escapeText(value))
	if n.Comment != "" {
		fmt.Fprintf(b, "    <comment>%s</comment>\n", escapeText(n.Comment))
	}
	b.WriteString("  </data>\n")
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

func escapeText(s string) string { return textEscaper.Replace(stripInvalid(s)) }

func escapeAttr(s string) string { return attrEscaper.Replace(stripInvalid(s)) }

// isXMLChar reports whether r may appear in an XML 1.0 document.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// ValidText reports whether s can be stored in a .resx file unchanged.
func ValidText(s string) bool {
	for _, r := range s {
		if !isXMLChar(r) {
			return false
		}
	}
	return true
}

// stripInvalid drops characters XML cannot represent, even as references.
func stripInvalid(s string) string {
	if ValidText(s) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s)
}

// ---------------------------------------------------------------------------
// Codec
// ---------------------------------------------------------------------------

// Codec reads and writes whole resource files.
type Codec interface {
	ReadFile(path string) (*File, error)
	WriteFile(path string, f *File) error
}

// FileCodec is the on-disk .resx Codec.
type FileCodec struct{}

// ReadFile implements Codec.
func (FileCodec) ReadFile(path string) (*File, error) { return ParseFile(path) }

// WriteFile implements Codec.
func (FileCodec) WriteFile(path string, f *File) error { return f.WriteFile(path) }
