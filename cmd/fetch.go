package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wikimark/wikiconf/internal/generate"
	"github.com/wikimark/wikiconf/siteconf"
)

var (
	outPath     string
	genPackage  string
	genVar      string
	genImport   string
	noCache     bool
	showSummary bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <domain>...",
	Short: "Fetch wikis and emit Go parser configuration",
	Long: `Fetch the siteinfo of each wiki domain (e.g. en.wikipedia.org), extract
the parser configuration and emit it as generated Go code. A single domain
is written to stdout unless -o names a file; multiple domains require -o to
name a directory, one generated file per wiki.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide at least one wiki domain")
			os.Exit(1)
		}

		cfg, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		if noCache {
			cfg.Cache.Disabled = true
		}
		if genPackage != "" {
			cfg.Generate.Package = genPackage
		}
		if genVar != "" {
			cfg.Generate.Var = genVar
		}
		if genImport != "" {
			cfg.Generate.Import = genImport
		}

		ctx := context.Background()
		if len(args) == 1 {
			runFetchOne(ctx, args[0], cfg)
			return
		}
		runFetchMany(ctx, args, cfg)
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output file (single domain) or directory (multiple domains)")
	fetchCmd.Flags().StringVar(&genPackage, "package", "", "Package name of the generated file")
	fetchCmd.Flags().StringVar(&genVar, "var", "", "Variable name of the generated configuration")
	fetchCmd.Flags().StringVar(&genImport, "import", "", "Import path of the consumer parser package")
	fetchCmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the siteinfo cache")
	fetchCmd.Flags().BoolVar(&showSummary, "summary", false, "Print a summary of the extracted sets to stderr")
}

func runFetchOne(ctx context.Context, domain string, cfg siteconf.Config) {
	res, err := siteconf.Fetch(ctx, logger, domain, cfg)
	if err != nil {
		logger.Error("Error fetching wiki configuration", zap.String("domain", domain), zap.Error(err))
		os.Exit(1)
	}

	if showSummary {
		fmt.Fprint(os.Stderr, siteconf.Summary(res))
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			logger.Error("Error creating output file", zap.Error(err))
			os.Exit(1)
		}
		defer f.Close()
		out = f
	} else {
		logger.Info("writing generated configuration to stdout")
	}

	if err := writeGenerated(out, res, cfg); err != nil {
		logger.Error("Error writing generated configuration", zap.Error(err))
		os.Exit(1)
	}
}

func runFetchMany(ctx context.Context, domains []string, cfg siteconf.Config) {
	if outPath == "" {
		fmt.Println("error: Please provide an output directory (-o) when fetching multiple domains")
		os.Exit(1)
	}
	if err := os.MkdirAll(outPath, 0o755); err != nil {
		logger.Error("Error creating output directory", zap.Error(err))
		os.Exit(1)
	}

	results, err := siteconf.FetchAll(ctx, logger, domains, cfg)
	if err != nil {
		logger.Error("Error fetching wiki configurations", zap.Error(err))
		os.Exit(1)
	}

	for i := range results {
		res := &results[i]
		if showSummary {
			fmt.Fprint(os.Stderr, siteconf.Summary(res))
		}

		perWiki := cfg
		perWiki.Generate.Var = varNameForDomain(cfg.Generate.Var, res.Domain)
		name := filepath.Join(outPath, fileNameForDomain(res.Domain))
		if err := writeGeneratedFile(name, res, perWiki); err != nil {
			logger.Error("Error writing generated configuration",
				zap.String("domain", res.Domain),
				zap.Error(err))
			os.Exit(1)
		}
		logger.Info("wrote generated configuration",
			zap.String("domain", res.Domain),
			zap.String("file", name))
	}
}

func writeGenerated(out io.Writer, res *siteconf.Result, cfg siteconf.Config) error {
	return generate.Write(out, res.Source, generate.Options{
		PackageName: cfg.Generate.Package,
		VarName:     cfg.Generate.Var,
		ImportPath:  cfg.Generate.Import,
		Domain:      res.Domain,
	})
}

func writeGeneratedFile(name string, res *siteconf.Result, cfg siteconf.Config) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeGenerated(f, res, cfg)
}

// fileNameForDomain turns en.wikipedia.org into en_wikipedia_org.go.
func fileNameForDomain(domain string) string {
	name := strings.ReplaceAll(domain, ".", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name + ".go"
}

// varNameForDomain turns a base name and en.wikipedia.org into
// BaseEnWikipediaOrg, so several generated files can share one package.
func varNameForDomain(base, domain string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, part := range strings.FieldsFunc(domain, func(r rune) bool {
		return r == '.' || r == '-'
	}) {
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}
