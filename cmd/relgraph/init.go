package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"relgraph/internal/config"
)

// Adapted from the teacher's CLAUDE.md sentinel-block writer
// (repoguide's `init` subcommand): the sentinel-replace mechanics carry
// over unchanged, the generated section now documents relgraph's own
// query surface instead of a single TOON repo map.
const (
	sentinelStart = "<!-- relgraph:start -->"
	sentinelEnd   = "<!-- relgraph:end -->"
)

var initDryRun bool
var initWriteConfig bool

var initCmd = &cobra.Command{
	Use:   "init [path-to-CLAUDE.md]",
	Short: "Write a relgraph usage section into a CLAUDE.md file",
	Long: `Write a relgraph usage section to a CLAUDE.md file. The section is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDryRun, "dry-run", false, "print what would be written without modifying the file")
	initCmd.Flags().BoolVar(&initWriteConfig, "write-config", false, "also scaffold a default .relgraph.toml in the current directory")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	section := generateSection()

	if initWriteConfig && !initDryRun {
		path, err := config.WriteDefaultConfig(".")
		if err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
		fmt.Printf("wrote default config to %s\n", path)
	}

	if initDryRun && len(args) == 0 {
		fmt.Println(section)
		return nil
	}

	path := "CLAUDE.md"
	if len(args) > 0 {
		path = args[0]
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if initDryRun {
		fmt.Print(updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("wrote relgraph section to %s\n", path)
	return nil
}

func generateSection() string {
	body := `## relgraph — File Reference Graph

Run ` + "`relgraph build`" + ` via the Bash tool before a broad exploration of an
unfamiliar codebase. It builds a weighted, directed graph of file-to-file
reference relationships from tree-sitter symbol extraction and git
co-change history.

**Availability:** Check with ` + "`relgraph --version`" + ` first; skip gracefully if
not found.

**Run it:**
` + "```" + `bash
relgraph build                          # analyze the current repository
relgraph related path/to/file.py        # files most related to file.py
relgraph metadata path/to/file.py       # symbols defined/referenced in file.py
relgraph export csv --out .relgraph     # scores.csv + symbols.csv
` + "```" + `

**How to use it:**

1. **Start from ` + "`relgraph related <file>`" + `** instead of Grep when you need to
   find files that are coupled to one you're already looking at — it
   combines import analysis with git co-change history.
2. **Use ` + "`relgraph metadata <file>`" + ` to see what a file defines and
   references** before deciding whether to read it in full.
3. **Only fall back to Glob/Grep** for things relgraph cannot answer, such
   as a fresh symbol search across a part of the tree it hasn't indexed.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
