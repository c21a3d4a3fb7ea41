package ontology

import "strings"

// Resource is the full metadata record for an ontology or nomenclature,
// suitable for inclusion in an output record's metadata block.
type Resource struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	URL             string `json:"url"`
	Version         string `json:"version"`
	NamespacePrefix string `json:"namespacePrefix"`
	IRIPrefix       string `json:"iriPrefix"`
}

// knownResources maps CURIE prefixes to resource metadata. Versions default
// to "-" and are overridden by the resolved version of the source that
// produced a term.
var knownResources = map[string]Resource{
	"HP": {
		ID:              "hp",
		Name:            "human phenotype ontology",
		URL:             "http://purl.obolibrary.org/obo/hp.owl",
		Version:         "-",
		NamespacePrefix: "HP",
		IRIPrefix:       "http://purl.obolibrary.org/obo/HP_",
	},
	"MONDO": {
		ID:              "mondo",
		Name:            "mondo disease ontology",
		URL:             "http://purl.obolibrary.org/obo/mondo.obo",
		Version:         "-",
		NamespacePrefix: "MONDO",
		IRIPrefix:       "http://purl.obolibrary.org/obo/MONDO_",
	},
	"OMIM": {
		ID:              "omim",
		Name:            "Online Mendelian Inheritance in Man",
		URL:             "https://www.omim.org",
		Version:         "-",
		NamespacePrefix: "OMIM",
		IRIPrefix:       "https://omim.org/MIM:",
	},
	"HGNC": {
		ID:              "hgnc",
		Name:            "HUGO Gene Nomenclature Committee",
		URL:             "https://www.genenames.org",
		Version:         "-",
		NamespacePrefix: "HGNC",
		IRIPrefix:       "https://www.genenames.org/data/gene-symbol-report/#!/hgnc_id/",
	},
	"GENO": {
		ID:              "geno",
		Name:            "Genotype Ontology",
		URL:             "http://purl.obolibrary.org/obo/geno.owl",
		Version:         "-",
		NamespacePrefix: "GENO",
		IRIPrefix:       "http://purl.obolibrary.org/obo/GENO_",
	},
	"LOINC": {
		ID:              "loinc",
		Name:            "Logical Observation Identifiers Names and Codes",
		URL:             "https://loinc.org",
		Version:         "-",
		NamespacePrefix: "LOINC",
		IRIPrefix:       "https://loinc.org/",
	},
	"UO": {
		ID:              "uo",
		Name:            "Units of measurement ontology",
		URL:             "http://purl.obolibrary.org/obo/uo.owl",
		Version:         "-",
		NamespacePrefix: "UO",
		IRIPrefix:       "http://purl.obolibrary.org/obo/UO_",
	},
	"PATO": {
		ID:              "pato",
		Name:            "PhenotypicFeature And Trait Ontology",
		URL:             "http://purl.obolibrary.org/obo/pato.owl",
		Version:         "-",
		NamespacePrefix: "PATO",
		IRIPrefix:       "http://purl.obolibrary.org/obo/PATO_",
	},
	"UBERON": {
		ID:              "uberon",
		Name:            "Uber-anatomy ontology",
		URL:             "http://purl.obolibrary.org/obo/uberon.owl",
		Version:         "-",
		NamespacePrefix: "UBERON",
		IRIPrefix:       "http://purl.obolibrary.org/obo/UBERON_",
	},
	"MAXO": {
		ID:              "maxo",
		Name:            "Medical Action Ontology",
		URL:             "http://purl.obolibrary.org/obo/maxo.owl",
		Version:         "-",
		NamespacePrefix: "MAXO",
		IRIPrefix:       "http://purl.obolibrary.org/obo/MAXO_",
	},
	"NCIT": {
		ID:              "ncit",
		Name:            "NCI Thesaurus",
		URL:             "http://purl.obolibrary.org/obo/ncit.owl",
		Version:         "-",
		NamespacePrefix: "NCIT",
		IRIPrefix:       "http://purl.obolibrary.org/obo/NCIT_",
	},
}

// KnownPrefixes returns every CURIE prefix with built-in resource metadata.
func KnownPrefixes() []string {
	out := make([]string, 0, len(knownResources))
	for p := range knownResources {
		out = append(out, p)
	}
	return out
}

// LookupResource returns the resource metadata for a CURIE prefix,
// case-insensitively.
func LookupResource(prefix string) (Resource, bool) {
	r, ok := knownResources[strings.ToUpper(prefix)]
	return r, ok
}

// ResolveResource materializes a resource reference into full metadata,
// stamping the reference's version.
func ResolveResource(ref ResourceRef) (Resource, bool) {
	r, ok := LookupResource(ref.Prefix)
	if !ok {
		return Resource{}, false
	}
	if ref.Version != "" {
		r.Version = ref.Version
	}
	return r, true
}
