package siteconf

import (
	"strings"

	"github.com/fatih/color"
)

// maxTrailListed caps how many trail characters the summary spells out.
const maxTrailListed = 128

var (
	domainStyle = color.New(color.FgCyan, color.Bold)
	labelStyle  = color.New(color.FgYellow)
	countStyle  = color.New(color.FgGreen, color.Bold)
)

// Summary renders a short human-readable account of one wiki's extracted
// configuration, one line per set.
func Summary(res *Result) string {
	var builder strings.Builder
	builder.WriteString(domainStyle.Sprint(res.Domain) + "\n")

	src := res.Source
	writeSummarySet(&builder, "category namespaces", src.CategoryNamespaces)
	writeSummarySet(&builder, "file namespaces", src.FileNamespaces)
	writeSummarySet(&builder, "extension tags", src.ExtensionTags)
	writeSummarySet(&builder, "protocols", src.Protocols)
	writeSummarySet(&builder, "magic words", src.MagicWords)
	writeSummarySet(&builder, "redirect magic words", src.RedirectMagicWords)

	builder.WriteString(labelStyle.Sprintf("  %-20s ", "link trail"))
	builder.WriteString(countStyle.Sprintf("%4d", len(src.LinkTrail)))
	if n := len(src.LinkTrail); n > 0 && n <= maxTrailListed {
		builder.WriteString("  " + string(src.LinkTrail))
	}
	builder.WriteString("\n")

	return builder.String()
}

func writeSummarySet(builder *strings.Builder, label string, values []string) {
	builder.WriteString(labelStyle.Sprintf("  %-20s ", label))
	builder.WriteString(countStyle.Sprintf("%4d", len(values)))
	if len(values) > 0 {
		builder.WriteString("  " + strings.Join(values, " "))
	}
	builder.WriteString("\n")
}
