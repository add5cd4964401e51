package core

import (
	"strings"

	"psibridge/internal/enrich"
)

// EnrichLogListener logs each enrichment outcome.
type EnrichLogListener struct {
	Logger Logger
}

var _ enrich.Listener = EnrichLogListener{}

func (l EnrichLogListener) OnEnriched(kind, key string, changes []string) {
	if l.Logger == nil {
		return
	}
	l.Logger.Debug("object enriched", "kind", kind, "key", key, "changes", strings.Join(changes, ","))
}

func (l EnrichLogListener) OnMissing(kind, key string) {
	if l.Logger == nil {
		return
	}
	l.Logger.Warn("no remote record", "kind", kind, "key", key)
}
