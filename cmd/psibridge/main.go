// Command psibridge converts PSI-MI XML documents to curated IntAct entries
// and back, enriches them from public web services and exports UniProt
// interaction lines and GO annotations.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const appName = "psibridge"

var (
	// Version is set at build time.
	Version   = "0.1.0"
	BuildTime = "dev"

	exitFunc = os.Exit
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFunc(1)
	}
}

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
	envFiles   []string
	logLevel   string
	logFormat  string
	storage    string
	sqlitePath string
	blob       string
	blobRoot   string
	metricsOut string
	trace      bool

	metricsExporter string
	traceFormat     string
	// traceOut receives JSON spans; set to the command's stderr.
	traceOut io.Writer
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   appName,
		Short: "PSI-MI XML to IntAct converter",
		Long: `psibridge imports PSI-MI XML 2.5 documents into curated IntAct entries,
exports them back as compact or expanded PSI-MI XML, enriches them from the
taxonomy, ontology and UniProt web services, and writes UniProt CC lines
and GO annotation files.

Settings come from psibridge.yaml, .env files and PSIBRIDGE_* variables;
flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.traceOut = cmd.ErrOrStderr()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML, default ./psibridge.yaml when present)")
	pf.StringSliceVar(&opts.envFiles, "env-file", nil, "Env files loaded before PSIBRIDGE_* variables (default .env)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format (json, console)")
	pf.StringVar(&opts.storage, "storage", "", "Entry store driver (memory, sqlite, postgres)")
	pf.StringVar(&opts.sqlitePath, "sqlite-path", "", "SQLite database file")
	pf.StringVar(&opts.blob, "blob", "", "Blob store driver (fs, s3, memory)")
	pf.StringVar(&opts.blobRoot, "blob-root", "", "Blob root directory for the fs driver")
	pf.StringVar(&opts.metricsExporter, "metrics-exporter", "", "Metrics exporter (prometheus, expvar)")
	pf.StringVar(&opts.metricsOut, "metrics-textfile", "", "Write metrics to this file on exit")
	pf.BoolVar(&opts.trace, "trace", false, "Record a span per operation")
	pf.StringVar(&opts.traceFormat, "trace-format", "", "Span output with --trace (otel logs spans, json writes them to stderr)")

	cmd.AddCommand(
		importCmd(opts),
		exportCmd(opts),
		listCmd(opts),
		deleteCmd(opts),
		enrichCmd(opts),
		uniprotExportCmd(opts),
		configCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}
