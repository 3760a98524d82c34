// lrm manages multi-format localized string resource files with
// versioned backups.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/localeworks/lrm/backup"
	"github.com/localeworks/lrm/chain"
	"github.com/localeworks/lrm/codec"
	"github.com/localeworks/lrm/config"
	"github.com/localeworks/lrm/culture"
	"github.com/localeworks/lrm/project"

	_ "github.com/localeworks/lrm/android"
	_ "github.com/localeworks/lrm/applestrings"
	_ "github.com/localeworks/lrm/jsonfile"
	_ "github.com/localeworks/lrm/resxfile"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lrm",
		Short: "Localized Resource Manager: string resources with versioned backups",
		Long: `lrm, the Localized Resource Manager.

Manages localized string resources across JSON, .resx, Android strings.xml,
and Apple .strings files. Mutating commands snapshot the affected files into
a versioned backup store before touching them.

Commands:
  init             Scaffold lrm.json and the initial resource files
  list             List discovered languages and their entry counts
  add-language     Create the resource file for a new language
  remove-language  Delete a language's resource file (default protected)
  add-key          Add a key to every language file
  remove-key       Remove a key from every language file
  backups          Show the backup history of a resource file
  restore          Restore a resource file from a backup version
  chain            Run several mutating commands as one sequence`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newInitCmd(),
		newListCmd(),
		newAddLanguageCmd(),
		newRemoveLanguageCmd(),
		newAddKeyCmd(),
		newRemoveKeyCmd(),
		newBackupsCmd(),
		newRestoreCmd(),
		newChainCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lrm version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// init (scaffold config + resource files)
// ---------------------------------------------------------------------------

func newInitCmd() *cobra.Command {
	var (
		format      string
		defaultLang string
		baseName    string
		languages   []string
		nestedKeys  bool
		includeMeta bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold lrm.json and the initial resource files",
		Long: `Create lrm.json plus one resource file for the default language and
each language given via --lang. Fails if the project is already initialized.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &config.Config{
				DefaultLanguageCode: defaultLang,
				ResourceFormat:      format,
				JSON: config.JSONOptions{
					BaseName:         baseName,
					UseNestedKeys:    nestedKeys,
					IncludeMeta:      includeMeta,
					PreserveComments: includeMeta,
				},
			}
			p, err := project.Init(rootDir, cfg, languages)
			if err != nil {
				return err
			}
			langs, err := p.Languages()
			if err != nil {
				return err
			}
			logSuccess("initialized %s project with %d language file(s)", format, len(langs))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", codec.FormatJSON,
		"Resource format: "+strings.Join(codec.Formats(), ", "))
	cmd.Flags().StringVar(&defaultLang, "default-language", "en", "Default language code")
	cmd.Flags().StringVar(&baseName, "base-name", "strings", "Resource file base name")
	cmd.Flags().StringSliceVar(&languages, "lang", nil, "Additional language codes (repeatable)")
	cmd.Flags().BoolVar(&nestedKeys, "nested-keys", false, "Write nested JSON objects (json format)")
	cmd.Flags().BoolVar(&includeMeta, "include-meta", false, "Write @key metadata objects (json format)")

	return cmd
}

// ---------------------------------------------------------------------------
// list (read-only: discovered languages + stats)
// ---------------------------------------------------------------------------

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered languages and their entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Open(rootDir)
			if err != nil {
				return err
			}
			langs, err := p.Languages()
			if err != nil {
				return err
			}
			if len(langs) == 0 {
				logWarning("no resource files found under %s", rootDir)
				return nil
			}
			for _, lang := range langs {
				f, err := p.Codec.Read(lang.Path)
				if err != nil {
					return err
				}
				total, translated, _ := f.Stats()
				label := "default (" + p.Config.DefaultLanguageCode + ")"
				if !lang.IsDefault() {
					label = lang.Code + "  " + culture.DisplayName(lang.Code)
				}
				fmt.Printf("%-40s %3d/%3d  %s\n", label, translated, total, lang.Path)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// add-language / remove-language
// ---------------------------------------------------------------------------

func newAddLanguageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-language CODE",
		Short: "Create the resource file for a new language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Open(rootDir)
			if err != nil {
				return err
			}
			lang, err := p.AddLanguage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			logSuccess("added %s (%s): %s", lang.Code, culture.DisplayName(lang.Code), lang.Path)
			return nil
		},
	}
}

func newRemoveLanguageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-language CODE",
		Short: "Delete a language's resource file (default language is protected)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Open(rootDir)
			if err != nil {
				return err
			}
			if err := p.RemoveLanguage(cmd.Context(), args[0]); err != nil {
				return err
			}
			logSuccess("removed language %s (backup retained)", args[0])
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// add-key / remove-key
// ---------------------------------------------------------------------------

func newAddKeyCmd() *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "add-key KEY [VALUE]",
		Short: "Add a key to every language file",
		Long: `Add KEY to every language file. VALUE goes into the default language's
file; translations receive an empty placeholder.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Open(rootDir)
			if err != nil {
				return err
			}
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			if err := p.AddKey(cmd.Context(), args[0], value, comment); err != nil {
				return err
			}
			logSuccess("added key %q", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "Comment stored with the key (format permitting)")
	return cmd
}

func newRemoveKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-key KEY",
		Short: "Remove a key from every language file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Open(rootDir)
			if err != nil {
				return err
			}
			if err := p.RemoveKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			logSuccess("removed key %q", args[0])
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// backups / restore
// ---------------------------------------------------------------------------

func newBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups FILE",
		Short: "Show the backup history of a resource file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Open(rootDir)
			if err != nil {
				return err
			}
			history, err := p.Backups.History(args[0])
			if err != nil {
				return err
			}
			if len(history) == 0 {
				logInfo("no backups for %s", args[0])
				return nil
			}
			for _, m := range history {
				fmt.Printf("v%-4d %-16s %s\n", m.Version, m.Operation,
					m.Timestamp.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	var ver int

	cmd := &cobra.Command{
		Use:   "restore FILE",
		Short: "Restore a resource file from a backup version",
		Long: `Copy the snapshot with --version back over FILE. The current file is
snapshotted first so the restore itself can be undone. Without --version
the newest snapshot is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Open(rootDir)
			if err != nil {
				return err
			}
			if ver == 0 {
				history, err := p.Backups.History(args[0])
				if err != nil {
					return err
				}
				if len(history) == 0 {
					return fmt.Errorf("%w: %s", backup.ErrNoSuchVersion, args[0])
				}
				ver = history[len(history)-1].Version
			}
			if err := p.Backups.Restore(cmd.Context(), args[0], ver); err != nil {
				return err
			}
			logSuccess("restored %s from v%d", args[0], ver)
			return nil
		},
	}

	cmd.Flags().IntVar(&ver, "version", 0, "Backup version to restore (default: newest)")
	return cmd
}

// ---------------------------------------------------------------------------
// chain (sequential mutating commands)
// ---------------------------------------------------------------------------

func newChainCmd() *cobra.Command {
	var continueOnError bool

	cmd := &cobra.Command{
		Use:   "chain STEP...",
		Short: "Run several mutating commands as one sequence",
		Long: `Run each STEP (a quoted argument vector, e.g. "add-language fr") in
order. By default the first failing step stops the chain and the remaining
steps are recorded as skipped; --continue-on-error runs every step
regardless.

Example:
  lrm chain "add-language fr" "add-language de" "add-key app.title 'My App'"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := chain.New()
			c.StopOnError = !continueOnError
			for _, step := range args {
				c.Add(newChainStep(rootDir, step))
			}
			c.Run(cmd.Context())

			for _, r := range c.Results() {
				switch r.Outcome {
				case chain.Success:
					logSuccess("%-9s %s (%s)", r.Outcome, strings.Join(r.Args, " "), r.Duration.Round(time.Millisecond))
				case chain.Failed:
					logError("%-9s %s: %v", r.Outcome, strings.Join(r.Args, " "), r.Err)
				case chain.Skipped:
					logWarning("%-9s %s", r.Outcome, strings.Join(r.Args, " "))
				}
			}
			if !c.OK() {
				return fmt.Errorf("chain %s: not all steps succeeded", c.State())
			}
			logSuccess("chain completed: %d step(s)", c.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false,
		"Keep running steps after a failure")
	return cmd
}
