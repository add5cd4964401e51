package webservice

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"psibridge/internal/enrich"
)

var (
	_ enrich.TaxonFetcher   = (*Taxonomy)(nil)
	_ enrich.TermFetcher    = (*OLS)(nil)
	_ enrich.ProteinFetcher = (*UniProt)(nil)
)

// Taxonomy fetches organisms from the ENA taxonomy service.
type Taxonomy struct {
	client *Client
	base   string
}

type taxonDoc struct {
	TaxID          string `json:"taxId"`
	ScientificName string `json:"scientificName"`
	CommonName     string `json:"commonName"`
}

func (t *Taxonomy) FetchTaxon(ctx context.Context, taxID string) (enrich.TaxonRecord, error) {
	if _, err := strconv.Atoi(taxID); err != nil {
		return enrich.TaxonRecord{}, enrich.ErrNotFound
	}
	var doc taxonDoc
	u := strings.TrimRight(t.base, "/") + "/tax-id/" + url.PathEscape(taxID)
	if err := t.client.getJSON(ctx, u, &doc); err != nil {
		return enrich.TaxonRecord{}, err
	}
	if doc.ScientificName == "" {
		return enrich.TaxonRecord{}, enrich.ErrNotFound
	}
	if doc.TaxID == "" {
		doc.TaxID = taxID
	}
	return enrich.TaxonRecord{TaxID: doc.TaxID, ScientificName: doc.ScientificName, CommonName: doc.CommonName}, nil
}

// OLS fetches ontology terms from the EBI Ontology Lookup Service.
type OLS struct {
	client *Client
	base   string
}

// shortSynonymType marks the PSI-MI short label among a term's synonyms.
const shortSynonymType = "PSI-MI-short"

type olsPage struct {
	Embedded struct {
		Terms []olsTerm `json:"terms"`
	} `json:"_embedded"`
}

type olsTerm struct {
	OboID    string `json:"obo_id"`
	Label    string `json:"label"`
	Synonyms []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"obo_synonym"`
}

func (o *OLS) FetchTerm(ctx context.Context, identifier string) (enrich.TermRecord, error) {
	prefix, _, ok := strings.Cut(identifier, ":")
	if !ok || prefix == "" {
		return enrich.TermRecord{}, enrich.ErrNotFound
	}
	q := url.Values{"obo_id": {identifier}}
	u := fmt.Sprintf("%s/api/ontologies/%s/terms?%s",
		strings.TrimRight(o.base, "/"), url.PathEscape(strings.ToLower(prefix)), q.Encode())

	var page olsPage
	if err := o.client.getJSON(ctx, u, &page); err != nil {
		return enrich.TermRecord{}, err
	}
	if len(page.Embedded.Terms) == 0 {
		return enrich.TermRecord{}, enrich.ErrNotFound
	}
	term := page.Embedded.Terms[0]
	rec := enrich.TermRecord{Identifier: identifier, ShortLabel: term.Label, FullName: term.Label}
	for _, syn := range term.Synonyms {
		if syn.Type == shortSynonymType && syn.Name != "" {
			rec.ShortLabel = syn.Name
			break
		}
	}
	return rec, nil
}

// UniProt fetches protein entries from the UniProt REST API.
type UniProt struct {
	client *Client
	base   string
}

type uniprotDoc struct {
	PrimaryAccession   string `json:"primaryAccession"`
	UniProtkbID        string `json:"uniProtkbId"`
	ProteinDescription struct {
		RecommendedName struct {
			FullName struct {
				Value string `json:"value"`
			} `json:"fullName"`
		} `json:"recommendedName"`
	} `json:"proteinDescription"`
	Genes []struct {
		GeneName struct {
			Value string `json:"value"`
		} `json:"geneName"`
	} `json:"genes"`
	Organism struct {
		TaxonID int `json:"taxonId"`
	} `json:"organism"`
	Sequence struct {
		Value string `json:"value"`
	} `json:"sequence"`
}

func (p *UniProt) FetchProtein(ctx context.Context, accession string) (enrich.ProteinRecord, error) {
	accession = strings.TrimSpace(accession)
	if accession == "" {
		return enrich.ProteinRecord{}, enrich.ErrNotFound
	}
	var doc uniprotDoc
	u := strings.TrimRight(p.base, "/") + "/uniprotkb/" + url.PathEscape(accession) + ".json"
	if err := p.client.getJSON(ctx, u, &doc); err != nil {
		return enrich.ProteinRecord{}, err
	}
	// Deleted and demerged entries come back without an accession.
	if doc.PrimaryAccession == "" {
		return enrich.ProteinRecord{}, enrich.ErrNotFound
	}
	rec := enrich.ProteinRecord{
		Accession: doc.PrimaryAccession,
		EntryName: doc.UniProtkbID,
		FullName:  doc.ProteinDescription.RecommendedName.FullName.Value,
		Sequence:  doc.Sequence.Value,
	}
	if len(doc.Genes) > 0 {
		rec.GeneName = doc.Genes[0].GeneName.Value
	}
	if doc.Organism.TaxonID != 0 {
		rec.TaxID = strconv.Itoa(doc.Organism.TaxonID)
	}
	return rec, nil
}
