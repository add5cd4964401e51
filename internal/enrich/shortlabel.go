package enrich

import (
	"strconv"
	"strings"

	"psibridge/pkg/domain"
)

// MaxShortLabel is the longest interaction short label generated.
const MaxShortLabel = 20

// InteractionShortLabel derives "a-b" from the bait, or the component whose
// interactor sorts first when there is no bait, and the first other
// component. Parts are gene names when known, lowercased, and cut so the
// label fits MaxShortLabel.
func InteractionShortLabel(in *domain.Interaction) string {
	var comps []*domain.Component
	for _, c := range in.Components {
		if c != nil && c.Interactor != nil {
			comps = append(comps, c)
		}
	}
	if len(comps) == 0 {
		return truncate(strings.ToLower(in.ShortLabel), MaxShortLabel)
	}
	first := in.Bait()
	if first == nil {
		first = comps[0]
		for _, c := range comps[1:] {
			if labelPart(c) < labelPart(first) {
				first = c
			}
		}
	}
	var second *domain.Component
	for _, c := range comps {
		if c != first {
			second = c
			break
		}
	}
	a := labelPart(first)
	if second == nil {
		return truncate(a, MaxShortLabel)
	}
	b := labelPart(second)
	return joinParts(a, b, MaxShortLabel)
}

func labelPart(c *domain.Component) string {
	if gene := c.Interactor.GeneName(); gene != "" {
		return strings.ToLower(gene)
	}
	return strings.ToLower(c.Interactor.ShortLabel)
}

// joinParts joins a and b with a hyphen, cutting the longer part first so
// the result is at most limit characters.
func joinParts(a, b string, limit int) string {
	room := limit - 1
	if len(a)+len(b) <= room {
		return a + "-" + b
	}
	half := room / 2
	switch {
	case len(a) <= half:
		b = truncate(b, room-len(a))
	case len(b) <= room-half:
		a = truncate(a, room-len(b))
	default:
		a = truncate(a, half)
		b = truncate(b, room-half)
	}
	return a + "-" + b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// RelabelInteractions regenerates the short label of every interaction,
// adding a "-N" suffix to labels already taken by an earlier interaction.
// It returns the number of interactions whose label changed.
func RelabelInteractions(interactions []*domain.Interaction) int {
	taken := make(map[string]struct{})
	changed := 0
	for _, in := range interactions {
		if in == nil {
			continue
		}
		base := InteractionShortLabel(in)
		label := base
		for n := 2; ; n++ {
			if _, ok := taken[label]; !ok {
				break
			}
			suffix := "-" + strconv.Itoa(n)
			label = truncate(base, MaxShortLabel-len(suffix)) + suffix
		}
		taken[label] = struct{}{}
		if label != in.ShortLabel {
			in.ShortLabel = label
			changed++
		}
	}
	return changed
}
