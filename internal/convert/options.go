package convert

import (
	"slices"
	"strings"

	"psibridge/pkg/domain"
)

// DefaultExcludedTopics are curator-internal annotation topics never written
// to PSI-MI XML.
var DefaultExcludedTopics = []string{
	"remark-internal",
	"to-be-reviewed",
	"accepted",
	"on-hold",
	"correction-comment",
}

// Options configures a Converter.
type Options struct {
	// CompactXML hoists experiments and interactors into the entry-level
	// lists and references them by id from interactions.
	CompactXML bool
	// ExcludedAnnotationTopics lists topic short labels or identifiers that
	// are dropped when writing PSI-MI XML.
	ExcludedAnnotationTopics []string
}

// DefaultOptions returns expanded output with the default topic exclusions.
func DefaultOptions() Options {
	return Options{ExcludedAnnotationTopics: slices.Clone(DefaultExcludedTopics)}
}

func (o Options) excludes(topic *domain.CvObject) bool {
	if topic == nil {
		return false
	}
	for _, t := range o.ExcludedAnnotationTopics {
		if t == "" {
			continue
		}
		if strings.EqualFold(t, topic.ShortLabel) || t == topic.Identifier {
			return true
		}
	}
	return false
}
