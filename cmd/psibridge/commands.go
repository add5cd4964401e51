package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"psibridge/internal/config"
)

// expandInputs resolves file arguments and doublestar patterns such as
// "data/**/*.xml" into a sorted list of distinct files.
func expandInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !hasMeta(arg) {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %s", arg)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func importCmd(opts *rootOptions) *cobra.Command {
	var keepGoing bool
	cmd := &cobra.Command{
		Use:   "import <file|glob>...",
		Short: "Import PSI-MI XML documents",
		Long: `Import converts every entry of each PSI-MI XML document into a stored
IntAct entry and keeps the raw document in the blob store. Arguments may be
files or doublestar patterns such as "data/**/*.xml".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandInputs(args)
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), nil, func(a *app) error {
				out := cmd.OutOrStdout()
				failed := 0
				for _, file := range files {
					if err := importFile(cmd, a, file, out); err != nil {
						if !keepGoing {
							return err
						}
						failed++
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", file, err)
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d files failed", failed, len(files))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Continue with the next file after a failure")
	return cmd
}

func importFile(cmd *cobra.Command, a *app, file string, out io.Writer) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	summaries, err := a.svc.ImportXML(cmd.Context(), filepath.Base(file), f)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		fmt.Fprintf(out, "%s\t%s\t%d interactions\n", s.ID, s.Label, s.Interactions)
	}
	return nil
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var (
		compact bool
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export <entry-id>",
		Short: "Export a stored entry as PSI-MI XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), nil, func(a *app) error {
				if !cmd.Flags().Changed("compact") {
					compact = a.cfg.Conversion.CompactXML
				}
				w := cmd.OutOrStdout()
				if outPath != "" {
					f, err := createOutput(outPath)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				info, err := a.svc.ExportXML(cmd.Context(), args[0], compact, w)
				if err != nil {
					return err
				}
				if outPath != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d bytes\n", outPath, info.Key, info.Size)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "Write experiments and interactors once and reference them by id")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func listCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), nil, func(a *app) error {
				entries, err := a.svc.ListEntries(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(entries)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tLABEL\tINTERACTIONS\tEXPERIMENTS\tINTERACTORS\tCREATED")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
						e.ID, e.Label, e.Interactions, e.Experiments, e.Interactors, e.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func deleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>...",
		Short: "Delete stored entries and their exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), nil, func(a *app) error {
				var errs []error
				for _, id := range args {
					if err := a.svc.DeleteEntry(cmd.Context(), id); err != nil {
						errs = append(errs, err)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				}
				return errors.Join(errs...)
			})
		},
	}
}

func enrichCmd(opts *rootOptions) *cobra.Command {
	var skipTerms, skipOrganisms, skipProteins, skipLabels bool
	cmd := &cobra.Command{
		Use:   "enrich <entry-id>...",
		Short: "Enrich stored entries from the taxonomy, ontology and UniProt services",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tune := func(cfg *config.Config) {
				e := &cfg.Enrichment
				e.UpdateCvTerms = e.UpdateCvTerms && !skipTerms
				e.UpdateOrganisms = e.UpdateOrganisms && !skipOrganisms
				e.UpdateProteins = e.UpdateProteins && !skipProteins
				e.RegenerateShortLabels = e.RegenerateShortLabels && !skipLabels
			}
			return opts.withApp(cmd.Context(), tune, func(a *app) error {
				for _, id := range args {
					report, err := a.svc.EnrichEntry(cmd.Context(), id)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tterms=%d organisms=%d proteins=%d relabelled=%d missing=%d\n",
						id, report.Terms, report.Organisms, report.Proteins, report.Relabelled, report.Missing)
				}
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.BoolVar(&skipTerms, "no-cv-terms", false, "Do not update vocabulary terms")
	f.BoolVar(&skipOrganisms, "no-organisms", false, "Do not update organisms")
	f.BoolVar(&skipProteins, "no-proteins", false, "Do not update proteins")
	f.BoolVar(&skipLabels, "no-short-labels", false, "Do not regenerate interaction short labels")
	return cmd
}

func uniprotExportCmd(opts *rootOptions) *cobra.Command {
	var (
		ccPath, goPath string
		spoke          bool
		assignedBy     string
	)
	cmd := &cobra.Command{
		Use:   "uniprot-export [entry-id...]",
		Short: "Write UniProt CC interaction lines and GO annotations",
		Long: `uniprot-export classifies the interactions of the given entries, or of every
stored entry, into binary pairs and writes UniProt CC lines and a GAF 2.2
file. Both artifacts are also kept in the blob store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tune := func(cfg *config.Config) {
				cfg.Export.IncludeSpokeExpanded = cfg.Export.IncludeSpokeExpanded || spoke
				if assignedBy != "" {
					cfg.Export.AssignedBy = assignedBy
				}
			}
			return opts.withApp(cmd.Context(), tune, func(a *app) error {
				var cc, gaf io.Writer
				for _, out := range []struct {
					path string
					dst  *io.Writer
				}{{ccPath, &cc}, {goPath, &gaf}} {
					if out.path == "" {
						continue
					}
					f, err := createOutput(out.path)
					if err != nil {
						return err
					}
					defer f.Close()
					*out.dst = f
				}
				res, err := a.svc.ExportUniprot(cmd.Context(), args, cc, gaf)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d entries, %d pairs\n%s\n%s\n", res.Entries, res.Pairs, res.CCKey, res.GAFKey)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&ccPath, "cc", "", "CC lines output file")
	f.StringVar(&goPath, "go", "", "GAF output file")
	f.BoolVar(&spoke, "include-spoke-expanded", false, "Export pairs only evidenced by spoke expansion")
	f.StringVar(&assignedBy, "assigned-by", "", "GAF assigned-by column (default from config)")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration (default ./" + config.DefaultFile + ")",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			written, err := config.WriteDefault(path, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", written)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
