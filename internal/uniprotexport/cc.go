package uniprotexport

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Options controls which pairs are exported and how rows are stamped.
type Options struct {
	// IncludeSpokeExpanded exports pairs only evidenced by spoke expansion.
	IncludeSpokeExpanded bool
	// AssignedBy is written to the GAF assigned-by column. Defaults to IntAct.
	AssignedBy string
	// Date stamps GAF rows. Defaults to the current day.
	Date time.Time
}

func (o Options) assignedBy() string {
	if o.AssignedBy == "" {
		return "IntAct"
	}
	return o.AssignedBy
}

func (o Options) date() time.Time {
	if o.Date.IsZero() {
		return time.Now().UTC()
	}
	return o.Date
}

// partnerLine aggregates the evidence for one protein and one partner.
type partnerLine struct {
	protein     Protein
	partner     Protein
	experiments map[string]struct{}
	// observed is set once a pair is seen outside spoke expansion.
	observed bool
}

type ccBlock struct {
	master string
	lines  map[string]*partnerLine
}

func groupPartners(bins []BinaryInteraction) []*ccBlock {
	blocks := make(map[string]*ccBlock)
	add := func(p, partner Protein, bin BinaryInteraction) {
		master := p.Master()
		blk, ok := blocks[master]
		if !ok {
			blk = &ccBlock{master: master, lines: make(map[string]*partnerLine)}
			blocks[master] = blk
		}
		key := p.Accession + "|" + partner.Accession
		line, ok := blk.lines[key]
		if !ok {
			line = &partnerLine{protein: p, partner: partner, experiments: make(map[string]struct{})}
			blk.lines[key] = line
		}
		for _, ex := range bin.Experiments {
			line.experiments[ex] = struct{}{}
		}
		if !bin.Expanded {
			line.observed = true
		}
	}
	for _, bin := range bins {
		add(bin.A, bin.B, bin)
		if bin.A.Accession != bin.B.Accession {
			add(bin.B, bin.A, bin)
		}
	}
	out := make([]*ccBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].master < out[j].master })
	return out
}

// WriteCCLines writes one "-!- INTERACTION:" comment block per master
// protein, with a line per partner:
//
//	CC       P12345; Q67890: GENEB; NbExp=2; IntAct=EBI-1, EBI-2;
//
// Blocks are preceded by an AC line and terminated by "//".
func WriteCCLines(w io.Writer, bins []BinaryInteraction, opts Options) error {
	bw := bufio.NewWriter(w)
	for _, blk := range groupPartners(bins) {
		lines := make([]*partnerLine, 0, len(blk.lines))
		for _, l := range blk.lines {
			if l.observed || opts.IncludeSpokeExpanded {
				lines = append(lines, l)
			}
		}
		if len(lines) == 0 {
			continue
		}
		sort.Slice(lines, func(i, j int) bool {
			if lines[i].protein.Accession != lines[j].protein.Accession {
				return lines[i].protein.Accession < lines[j].protein.Accession
			}
			return lines[i].partner.Accession < lines[j].partner.Accession
		})
		fmt.Fprintf(bw, "AC   %s;\n", blk.master)
		fmt.Fprintln(bw, "CC   -!- INTERACTION:")
		for _, l := range lines {
			fmt.Fprintf(bw, "CC       %s\n", ccLine(l))
		}
		fmt.Fprintln(bw, "//")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write cc lines: %w", err)
	}
	return nil
}

func ccLine(l *partnerLine) string {
	var b strings.Builder
	b.WriteString(l.protein.Accession)
	b.WriteString("; ")
	b.WriteString(l.partner.Accession)
	if l.partner.GeneName != "" {
		b.WriteString(": ")
		b.WriteString(l.partner.GeneName)
	}
	fmt.Fprintf(&b, "; NbExp=%d; IntAct=%s, %s;", len(l.experiments), l.protein.InteractorAC, l.partner.InteractorAC)
	return b.String()
}
