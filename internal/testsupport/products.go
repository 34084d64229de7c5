package testsupport

import (
	"testing"

	"entres/internal/record"
	"entres/internal/textutil"
)

// Retail store codes used as blocking values in product fixtures.
const (
	StoreSM        = "SM"
	StoreRobinsons = "Robinsons"
)

// ProductNames are noisy observations of three products: indexes 0, 2 and 4
// are one cheese, 1 and 5 one yogurt, 3 a baking soda.
var ProductNames = []string{
	"PrimeHarvestCheese10Qg",
	"PureGourCetYogurt2.4kg",
	"PrimeHarvLstCheese1F0g",
	"NutSaFusionBakingSoda200g",
	"PrimeIarvestCh~ose100g",
	"PureGotrmetYogurt2_4kg",
}

// ProductGroups lists the expected grouping of ProductNames by index.
var ProductGroups = [][]int{{0, 2, 4}, {1, 5}, {3}}

// DistinctProductName is unlike every entry of ProductNames.
const DistinctProductName = "PureGourmetCookinMOil300mL"

// ProductSchema returns the product schema: a fuzzy observed_name field
// (indel ratio >= 70, probabilities 0.85/0.15) and an excluded retail_store
// field. With blocking, retail_store also feeds the RSBK blocking key.
func ProductSchema(t testing.TB, blocking bool, opts ...record.SchemaOption) *record.Schema {
	t.Helper()
	name, err := record.NewField("observed_name", func(a, b string) bool {
		return textutil.Ratio(a, b) >= 70
	}, record.WithProbabilities(0.85, 0.15))
	if err != nil {
		t.Fatalf("observed_name field: %v", err)
	}
	store, err := record.NewExactField[string]("retail_store", record.Excluded())
	if err != nil {
		t.Fatalf("retail_store field: %v", err)
	}
	var keys []record.BlockingKey
	if blocking {
		keys = append(keys, record.BlockingKey{
			Name: "RSBK",
			Derive: func(v record.Values) (string, bool) {
				code := v.String("retail_store")
				return code, code != ""
			},
		})
	}
	schema, err := record.NewSchema("product", []record.Field{name, store}, keys, opts...)
	if err != nil {
		t.Fatalf("product schema: %v", err)
	}
	return schema
}

// ProductReference builds one product reference with metadata {"id": id}.
func ProductReference(t testing.TB, schema *record.Schema, name, store string, id int) *record.Reference {
	t.Helper()
	ref, err := schema.New(map[string]any{
		"observed_name": name,
		"retail_store":  store,
	}, map[string]int{"id": id})
	if err != nil {
		t.Fatalf("product reference %q: %v", name, err)
	}
	return ref
}

// ProductReferences builds one reference per ProductNames entry for the
// given store, with metadata ids 1 through 6.
func ProductReferences(t testing.TB, schema *record.Schema, store string) []*record.Reference {
	t.Helper()
	refs := make([]*record.Reference, len(ProductNames))
	for i, name := range ProductNames {
		refs[i] = ProductReference(t, schema, name, store, i+1)
	}
	return refs
}
