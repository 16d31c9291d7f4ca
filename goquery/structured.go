package goquery

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitelens"
	"github.com/tidwall/gjson"
)

// productTypes are the schema types whose fields feed the product sub-map.
var productTypes = map[string]bool{
	"Product":             true,
	"ProductGroup":        true,
	"IndividualProduct":   true,
	"ProductModel":        true,
	"Book":                true,
	"SoftwareApplication": true,
	"Vehicle":             true,
	"Car":                 true,
}

// Candidate paths per product field; the first non-empty match wins.
var (
	namePaths         = []string{"name"}
	descriptionPaths  = []string{"description"}
	brandPaths        = []string{"brand.name", "brand", "manufacturer.name"}
	pricePaths        = []string{"offers.price", "offers.0.price", "offers.lowPrice", "offers.0.lowPrice", "offers.priceSpecification.price", "price"}
	currencyPaths     = []string{"offers.priceCurrency", "offers.0.priceCurrency", "priceCurrency"}
	availabilityPaths = []string{"offers.availability", "offers.0.availability", "availability"}
	ratingPaths       = []string{"aggregateRating.ratingValue", "reviewRating.ratingValue"}
	reviewCountPaths  = []string{"aggregateRating.reviewCount", "aggregateRating.ratingCount"}
)

// extractStructured collects every JSON-LD block in the document and
// derives the product sub-map from product-typed blocks.
func extractStructured(doc *goquery.Document) *sitelens.StructuredSignal {
	signal := &sitelens.StructuredSignal{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" || !gjson.Valid(raw) {
			return
		}
		for _, obj := range flattenLD(gjson.Parse(raw)) {
			for _, typ := range ldTypes(obj) {
				signal.Blocks = append(signal.Blocks, sitelens.StructuredBlock{
					Type: typ,
					Raw:  compactJSON(obj.Raw),
				})
			}
		}
	})

	for _, b := range signal.Blocks {
		if productTypes[b.Type] {
			fillProduct(&signal.Product, gjson.ParseBytes(b.Raw))
		}
	}
	return signal
}

// flattenLD expands top-level arrays and @graph containers into objects.
func flattenLD(v gjson.Result) []gjson.Result {
	switch {
	case v.IsArray():
		var out []gjson.Result
		for _, item := range v.Array() {
			out = append(out, flattenLD(item)...)
		}
		return out
	case v.IsObject():
		if graph := v.Get("@graph"); graph.IsArray() {
			return flattenLD(graph)
		}
		return []gjson.Result{v}
	}
	return nil
}

func ldTypes(obj gjson.Result) []string {
	t := obj.Get("@type")
	var types []string
	switch {
	case t.IsArray():
		for _, item := range t.Array() {
			if s := item.String(); s != "" {
				types = append(types, s)
			}
		}
	case t.String() != "":
		types = append(types, t.String())
	}
	if len(types) == 0 {
		return []string{"Thing"}
	}
	return types
}

func fillProduct(p *sitelens.ProductFields, obj gjson.Result) {
	fill := func(dst *string, paths []string) {
		if *dst != "" {
			return
		}
		*dst = firstString(obj, paths)
	}
	fill(&p.Name, namePaths)
	fill(&p.Description, descriptionPaths)
	fill(&p.Brand, brandPaths)
	fill(&p.Price, pricePaths)
	fill(&p.Currency, currencyPaths)
	fill(&p.Availability, availabilityPaths)
	fill(&p.Rating, ratingPaths)
	fill(&p.ReviewCount, reviewCountPaths)

	if i := strings.LastIndex(p.Availability, "/"); i >= 0 {
		p.Availability = p.Availability[i+1:]
	}
}

// firstString returns the first scalar found at paths.
func firstString(obj gjson.Result, paths []string) string {
	for _, path := range paths {
		v := obj.Get(path)
		if !v.Exists() || v.IsObject() || v.IsArray() {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

func compactJSON(raw string) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return json.RawMessage(raw)
	}
	return buf.Bytes()
}
