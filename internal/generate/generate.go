// Package generate emits Go source declaring one wiki's parser
// configuration as a package-level variable.
package generate

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strconv"

	"golang.org/x/tools/imports"

	"github.com/wikimark/wikiconf/internal/extract"
)

// Defaults used for any Options field left empty.
const (
	DefaultPackageName = "wikiconfig"
	DefaultVarName     = "Source"
	DefaultImportPath  = "github.com/wikimark/wikitext"
)

// Options controls the shape of the emitted file.
type Options struct {
	// PackageName is the package clause of the generated file.
	PackageName string
	// VarName is the name of the declared variable.
	VarName string
	// ImportPath is the package that declares ConfigurationSource.
	ImportPath string
	// Domain, when set, names the wiki in the file header and the
	// variable's doc comment.
	Domain string
}

func (o Options) withDefaults() Options {
	if o.PackageName == "" {
		o.PackageName = DefaultPackageName
	}
	if o.VarName == "" {
		o.VarName = DefaultVarName
	}
	if o.ImportPath == "" {
		o.ImportPath = DefaultImportPath
	}
	return o
}

// Write renders src as a generated Go file and writes it to w. The output
// is passed through the goimports formatter, so it is gofmt-clean.
func Write(w io.Writer, src *extract.ConfigurationSource, opts Options) error {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("// Code generated by wikiconf. DO NOT EDIT.\n")
	if opts.Domain != "" {
		fmt.Fprintf(&buf, "// Wiki: %s\n", opts.Domain)
	}
	fmt.Fprintf(&buf, "\npackage %s\n\n", opts.PackageName)
	fmt.Fprintf(&buf, "import %q\n\n", opts.ImportPath)
	if opts.Domain != "" {
		fmt.Fprintf(&buf, "// %s is the parser configuration of %s.\n", opts.VarName, opts.Domain)
	}
	fmt.Fprintf(&buf, "var %s = %s.ConfigurationSource{\n", opts.VarName, path.Base(opts.ImportPath))
	writeStringsField(&buf, "CategoryNamespaces", src.CategoryNamespaces)
	writeStringsField(&buf, "ExtensionTags", src.ExtensionTags)
	writeStringsField(&buf, "FileNamespaces", src.FileNamespaces)
	fmt.Fprintf(&buf, "\tLinkTrail: %s,\n", strconv.Quote(string(src.LinkTrail)))
	writeStringsField(&buf, "MagicWords", src.MagicWords)
	writeStringsField(&buf, "Protocols", src.Protocols)
	writeStringsField(&buf, "RedirectMagicWords", src.RedirectMagicWords)
	buf.WriteString("}\n")

	formatted, err := imports.Process(opts.PackageName+".go", buf.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("format generated configuration: %w", err)
	}
	_, err = w.Write(formatted)
	return err
}

func writeStringsField(buf *bytes.Buffer, field string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(buf, "\t%s: nil,\n", field)
		return
	}
	fmt.Fprintf(buf, "\t%s: []string{\n", field)
	for _, v := range values {
		fmt.Fprintf(buf, "\t\t%s,\n", strconv.Quote(v))
	}
	buf.WriteString("\t},\n")
}
