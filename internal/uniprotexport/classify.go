// Package uniprotexport derives the UniProtKB interaction comment lines and
// GO protein-binding annotations from curated entries.
package uniprotexport

import (
	"sort"
	"strings"

	"psibridge/pkg/domain"
)

// Protein is one side of a binary interaction.
type Protein struct {
	Accession    string
	GeneName     string
	InteractorAC string
	TaxID        string
}

// Master returns the accession with isoform and chain suffixes removed.
func (p Protein) Master() string { return MasterAccession(p.Accession) }

// BinaryInteraction is a pair of proteins evidenced by one interaction.
type BinaryInteraction struct {
	A, B        Protein
	Interaction string
	Experiments []string
	PubmedIDs   []string
	// Expanded marks pairs derived by spoke expansion of an n-ary
	// interaction rather than observed as a binary.
	Expanded bool
}

// Self reports whether both sides are the same master protein.
func (b BinaryInteraction) Self() bool { return b.A.Master() == b.B.Master() }

// MasterAccession strips isoform ("P12345-2") and processed chain
// ("P12345-PRO_0000012345") suffixes.
func MasterAccession(ac string) string {
	master, _, _ := strings.Cut(strings.TrimSpace(ac), "-")
	return master
}

// Classify turns each positive interaction into binary pairs. Two
// components give one true binary and a single component a self
// interaction. Larger complexes are spoke-expanded around the bait, or
// around the component with the alphabetically first short label when
// there is no bait. Pairs involving an interactor without a UniProtKB
// identity are skipped.
func Classify(entries []*domain.IntactEntry) []BinaryInteraction {
	var out []BinaryInteraction
	for _, e := range entries {
		if e == nil {
			continue
		}
		for _, in := range e.Interactions {
			if in == nil || in.Negative {
				continue
			}
			out = append(out, classify(in)...)
		}
	}
	return out
}

func classify(in *domain.Interaction) []BinaryInteraction {
	comps := make([]*domain.Component, 0, len(in.Components))
	for _, c := range in.Components {
		if c != nil && c.Interactor != nil {
			comps = append(comps, c)
		}
	}
	switch len(comps) {
	case 0:
		return nil
	case 1:
		return pair(in, comps[0], comps[0], false)
	case 2:
		return pair(in, comps[0], comps[1], false)
	}
	center := in.Bait()
	if center == nil {
		center = comps[0]
		for _, c := range comps[1:] {
			if c.Interactor.ShortLabel < center.Interactor.ShortLabel {
				center = c
			}
		}
	}
	var out []BinaryInteraction
	for _, c := range comps {
		if c == center {
			continue
		}
		out = append(out, pair(in, center, c, true)...)
	}
	return out
}

func pair(in *domain.Interaction, a, b *domain.Component, expanded bool) []BinaryInteraction {
	pa, ok := protein(a.Interactor)
	if !ok {
		return nil
	}
	pb, ok := protein(b.Interactor)
	if !ok {
		return nil
	}
	bin := BinaryInteraction{A: pa, B: pb, Interaction: in.AC, Expanded: expanded}
	if bin.Interaction == "" {
		bin.Interaction = in.ShortLabel
	}
	pmids := make(map[string]struct{})
	for _, ex := range in.Experiments {
		if ex == nil {
			continue
		}
		bin.Experiments = append(bin.Experiments, ex.ShortLabel)
		if id := ex.Publication.PubmedID(); id != "" {
			if _, seen := pmids[id]; !seen {
				pmids[id] = struct{}{}
				bin.PubmedIDs = append(bin.PubmedIDs, id)
			}
		}
	}
	sort.Strings(bin.PubmedIDs)
	return []BinaryInteraction{bin}
}

func protein(i *domain.Interactor) (Protein, bool) {
	ac := i.UniprotAC()
	if ac == "" {
		return Protein{}, false
	}
	p := Protein{Accession: ac, GeneName: i.GeneName(), InteractorAC: i.AC}
	if p.InteractorAC == "" {
		p.InteractorAC = i.ShortLabel
	}
	if i.BioSource != nil {
		p.TaxID = i.BioSource.TaxID
	}
	return p, true
}
