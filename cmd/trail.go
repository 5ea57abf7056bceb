package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wikimark/wikiconf/internal/extract"
)

var (
	trailGroup int
	trailJSON  bool
)

var trailCmd = &cobra.Command{
	Use:   "trail <pattern>",
	Short: "Enumerate the characters matched by a link trail pattern",
	Long: `Parse a delimited pattern the way MediaWiki linktrail values are written
(e.g. "/^([a-z]+)(.*)$/sD"), locate the capturing group and print every
character its repeated body can match.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := args[0]
		chars, err := extract.LinkTrailPattern(logger, pattern, trailGroup)
		if err != nil {
			logger.Error("Error enumerating link trail characters",
				zap.String("pattern", pattern),
				zap.Error(err))
			os.Exit(1)
		}

		if trailJSON {
			d, err := json.Marshal(struct {
				Pattern    string `json:"pattern"`
				Group      int    `json:"group"`
				Count      int    `json:"count"`
				Characters string `json:"characters"`
			}{pattern, trailGroup, len(chars), string(chars)})
			if err != nil {
				logger.Error("Error marshalling characters to JSON", zap.Error(err))
				os.Exit(1)
			}
			fmt.Println(string(d))
			return
		}
		fmt.Println(string(chars))
	},
}

func init() {
	trailCmd.Flags().IntVar(&trailGroup, "group", extract.LinkTrailGroupIndex, "Capturing group to enumerate")
	trailCmd.Flags().BoolVar(&trailJSON, "json", false, "Output as JSON")
}
