package uniprotexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
)

// GO terms used for binding annotations.
const (
	GOProteinBinding          = "GO:0005515"
	GOIdenticalProteinBinding = "GO:0042802"
)

const gafHeader = "!gaf-version: 2.2"

// WriteGOLines writes GAF 2.2 rows annotating both sides of each pair with
// protein binding, or identical protein binding for self interactions,
// inferred from physical interaction with the partner. One row is written
// per protein, partner and PubMed id; pairs without a publication are
// skipped.
func WriteGOLines(w io.Writer, bins []BinaryInteraction, opts Options) error {
	if _, err := io.WriteString(w, gafHeader+"\n"); err != nil {
		return fmt.Errorf("write gaf header: %w", err)
	}
	seen := make(map[string]struct{})
	var rows [][]string
	add := func(p, partner Protein, pmid string) {
		key := strings.Join([]string{p.Accession, partner.Accession, pmid}, "|")
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		rows = append(rows, gafRow(p, partner, pmid, opts))
	}
	for _, bin := range bins {
		if bin.Expanded && !opts.IncludeSpokeExpanded {
			continue
		}
		for _, pmid := range bin.PubmedIDs {
			add(bin.A, bin.B, pmid)
			add(bin.B, bin.A, pmid)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return strings.Join(rows[i], "\t") < strings.Join(rows[j], "\t")
	})

	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write gaf rows: %w", err)
	}
	return nil
}

func gafRow(p, partner Protein, pmid string, opts Options) []string {
	term := GOProteinBinding
	if p.Master() == partner.Master() {
		term = GOIdenticalProteinBinding
	}
	symbol := p.GeneName
	if symbol == "" {
		symbol = p.Master()
	}
	taxon := ""
	if p.TaxID != "" {
		taxon = "taxon:" + p.TaxID
	}
	isoform := ""
	if p.Accession != p.Master() {
		isoform = "UniProtKB:" + p.Accession
	}
	return []string{
		"UniProtKB",
		p.Master(),
		symbol,
		"enables",
		term,
		"PMID:" + pmid,
		"IPI",
		"UniProtKB:" + partner.Accession,
		"F",
		"",
		"",
		"protein",
		taxon,
		opts.date().Format("20060102"),
		opts.assignedBy(),
		"",
		isoform,
	}
}
