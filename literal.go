package romfs

import (
	"bufio"
	"fmt"
	"go/token"
	"io"
	"slices"
)

// Format selects how the builder renders an artifact.
type Format byte

// Supported output formats
const (
	FormatBinary Format = iota // tag || payload
	FormatC                    // C source fragment
	FormatGo                   // Go source file
	unknownFormat
)

func (f Format) isValid() bool {
	return f >= FormatBinary && f < unknownFormat
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatC:
		return "c"
	case FormatGo:
		return "go"
	default:
		return fmt.Sprintf("unknown(%d)", byte(f))
	}
}

// ParseFormat parses a format name.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "binary", "bin", "":
		return FormatBinary, nil
	case "c":
		return FormatC, nil
	case "go":
		return FormatGo, nil
	default:
		return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidInput, name)
	}
}

// LiteralOptions define literal-source rendering options.
type LiteralOptions struct {
	// Format must be FormatC or FormatGo.
	// Default: FormatC.
	Format Format

	// VarName is the name of the generated constant.
	// Default: "rom".
	VarName string

	// Package is the package clause of generated Go files.
	// Default: "main".
	Package string

	// Static declares the generated C symbols static.
	Static bool

	// Passphrase, when set, is rendered as a sibling literal.
	Passphrase Passphrase

	// LineWidth is the column at which string literals are broken.
	// Default: 79.
	LineWidth int
}

func (o *LiteralOptions) norm() *LiteralOptions {
	var oo LiteralOptions
	if o != nil {
		oo = *o
	}

	if oo.Format != FormatGo {
		oo.Format = FormatC
	}
	if oo.VarName == "" {
		oo.VarName = "rom"
	}
	if oo.Package == "" {
		oo.Package = "main"
	}
	if oo.LineWidth < 1 {
		oo.LineWidth = 79
	}
	return &oo
}

// WriteLiteral renders a tagged artifact as source code exposing its length,
// its bytes and, optionally, the passphrase.
func WriteLiteral(w io.Writer, artifact []byte, o *LiteralOptions) error {
	o = o.norm()
	if len(artifact) < TagLen {
		return ErrTruncated
	}
	if !isIdentifier(o.VarName) || o.isReserved(o.VarName) {
		return fmt.Errorf("%w: bad identifier %q", ErrInvalidInput, o.VarName)
	}
	if o.Format == FormatGo && (!isIdentifier(o.Package) || o.isReserved(o.Package)) {
		return fmt.Errorf("%w: bad package name %q", ErrInvalidInput, o.Package)
	}

	bw := bufio.NewWriter(w)
	if o.Format == FormatGo {
		writeGoLiteral(bw, artifact, o)
	} else {
		writeCLiteral(bw, artifact, o)
	}
	return bw.Flush()
}

func writeCLiteral(w *bufio.Writer, artifact []byte, o *LiteralOptions) {
	static := ""
	if o.Static {
		static = "static "
	}

	w.WriteString("/* Auto-generated ROM file, created by mkrom. */\n\n#include <stddef.h>\n")
	if pass, ok := o.Passphrase.Get(); ok {
		fmt.Fprintf(w, "%sconst char %s_passphrase[] = ", static, o.VarName)
		enc := newLiteralEncoder(w, cDialect, o.LineWidth, false)
		enc.writeString(pass)
		enc.close()
		w.WriteString(";\n")
	}
	fmt.Fprintf(w, "%sconst size_t %s_len = %d;\n", static, o.VarName, len(artifact))
	fmt.Fprintf(w, "%sconst char %s[] = \"%s\"", static, o.VarName, artifact[:TagLen])

	enc := newLiteralEncoder(w, cDialect, o.LineWidth, true)
	enc.writeBytes(artifact[TagLen:])
	enc.close()
	w.WriteString(";\n")
}

func writeGoLiteral(w *bufio.Writer, artifact []byte, o *LiteralOptions) {
	fmt.Fprintf(w, "// Code generated by mkrom. DO NOT EDIT.\n\npackage %s\n\n", o.Package)
	if pass, ok := o.Passphrase.Get(); ok {
		fmt.Fprintf(w, "const %sPassphrase = ", o.VarName)
		enc := newLiteralEncoder(w, goDialect, o.LineWidth, false)
		enc.writeString(pass)
		enc.close()
		w.WriteString("\n\n")
	}
	fmt.Fprintf(w, "const %sLen = %d\n\n", o.VarName, len(artifact))
	fmt.Fprintf(w, "const %s = \"%s\"", o.VarName, artifact[:TagLen])

	enc := newLiteralEncoder(w, goDialect, o.LineWidth, true)
	enc.writeBytes(artifact[TagLen:])
	enc.close()
	w.WriteString("\n")
}

// cReserved lists the C keywords plus the names declared by the
// generated fragment's includes.
var cReserved = []string{
	"auto", "break", "case", "char", "const", "continue", "default", "do",
	"double", "else", "enum", "extern", "float", "for", "goto", "if",
	"inline", "int", "long", "register", "restrict", "return", "short",
	"signed", "sizeof", "static", "struct", "switch", "typedef", "union",
	"unsigned", "void", "volatile", "while",
	"_Alignas", "_Alignof", "_Atomic", "_Bool", "_Complex", "_Generic",
	"_Imaginary", "_Noreturn", "_Static_assert", "_Thread_local",
	"NULL", "offsetof", "ptrdiff_t", "size_t", "wchar_t",
}

// isReserved reports whether name cannot be declared in the output.
func (o *LiteralOptions) isReserved(name string) bool {
	if o.Format == FormatGo {
		return token.IsKeyword(name)
	}
	return slices.Contains(cReserved, name)
}

func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}

// --------------------------------------------------------------------

type literalDialect struct {
	lineSep string // written before each continuation line
	// splitHex closes and reopens the literal between a hex escape and a
	// following literal byte. C hex escapes consume every hex digit that
	// follows them; Go's are fixed width.
	splitHex bool
}

var (
	cDialect  = literalDialect{lineSep: "\n", splitHex: true}
	goDialect = literalDialect{lineSep: " +\n\t"}
)

const hexDigits = "0123456789ABCDEF"

// literalEncoder writes bytes as a sequence of adjacent string literals,
// breaking lines once they reach the target width.
type literalEncoder struct {
	w     *bufio.Writer
	d     literalDialect
	width int

	continued bool // a literal precedes the first line
	lines     int  // number of lines opened
	col       int  // current line width, 0 when no literal is open
	afterHex  bool // the last byte was written as a hex escape
}

func newLiteralEncoder(w *bufio.Writer, d literalDialect, width int, continued bool) *literalEncoder {
	return &literalEncoder{w: w, d: d, width: width, continued: continued}
}

// writeBytes encodes p. Errors are reported by the underlying bufio.Writer's
// Flush.
func (e *literalEncoder) writeBytes(p []byte) {
	for _, c := range p {
		e.writeByte(c)
	}
}

// writeString encodes s.
func (e *literalEncoder) writeString(s string) {
	for i := 0; i < len(s); i++ {
		e.writeByte(s[i])
	}
}

// close terminates the open literal. An encoder that never opened a line
// and has no preceding literal emits an empty one.
func (e *literalEncoder) close() {
	if e.col != 0 {
		e.w.WriteByte('"')
		e.col = 0
	} else if e.lines == 0 && !e.continued {
		e.w.WriteString(`""`)
	}
}

func (e *literalEncoder) writeByte(c byte) {
	if e.col == 0 {
		if e.lines != 0 || e.continued {
			e.w.WriteString(e.d.lineSep)
		}
		e.w.WriteByte('"')
		e.col = 1
		e.lines++
	}

	switch {
	case c == '\\':
		e.w.WriteString(`\\`)
		e.col += 2
		e.afterHex = false
	case c == '\t':
		e.w.WriteString(`\t`)
		e.col += 2
		e.afterHex = false
	case c == '"':
		e.w.WriteString(`\"`)
		e.col += 2
		e.afterHex = false
	case c >= 0x20 && c < 0x7f:
		if e.afterHex && e.d.splitHex {
			e.w.WriteString(`""`)
			e.col += 2
		}
		e.w.WriteByte(c)
		e.col++
		e.afterHex = false
	default:
		e.w.Write([]byte{'\\', 'x', hexDigits[c>>4], hexDigits[c&0x0f]})
		e.col += 4
		e.afterHex = true
	}

	if e.col >= e.width {
		e.w.WriteByte('"')
		e.col = 0
		e.afterHex = false
	}
}
