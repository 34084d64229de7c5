package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"entres/internal/config"
	"entres/internal/logging"
	"entres/internal/resolve"
	"entres/internal/source"
	"entres/internal/testsupport"
)

// groupNames returns the sorted observed names of every group, with groups
// sorted by their first name.
func groupNames(t *testing.T, groups []resolve.Group) [][]string {
	t.Helper()
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		names := make([]string, 0, len(g.Records))
		for _, rec := range g.Records {
			v, ok := rec.Value("observed_name")
			require.True(t, ok)
			names = append(names, v.(string))
		}
		slices.Sort(names)
		out = append(out, names)
	}
	slices.SortFunc(out, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return out
}

func expectedNames(copies int) [][]string {
	out := make([][]string, 0, len(testsupport.ProductGroups))
	for _, idx := range testsupport.ProductGroups {
		var names []string
		for _, i := range idx {
			for range copies {
				names = append(names, testsupport.ProductNames[i])
			}
		}
		slices.Sort(names)
		out = append(out, names)
	}
	slices.SortFunc(out, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return out
}

func TestRunGroupsProducts(t *testing.T) {
	for _, mode := range []string{config.ModeIncremental, config.ModePartitioned} {
		t.Run(mode, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithMode(mode), testsupport.WithPartitionSize(2))

			result, err := Run(context.Background(), cfg, logging.NewNop())
			require.NoError(t, err)

			assert.NotEmpty(t, result.RunID)
			assert.Equal(t, mode, result.Mode)
			assert.Equal(t, cfg.Input.Path, result.Source)
			assert.Equal(t, len(testsupport.ProductNames), result.Rows)
			assert.Equal(t, expectedNames(1), groupNames(t, result.Groups))
			assert.Equal(t, 3, result.Stats.Clusters)
			assert.Equal(t, 3, result.Stats.Merges)
		})
	}
}

func TestRunBestSelection(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMode(config.ModePartitioned), testsupport.WithPartitionSize(2))
	cfg.Resolver.Selection = config.SelectionBest

	result, err := Run(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, expectedNames(1), groupNames(t, result.Groups))
}

func TestRunBlockingSeparatesStores(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStores(testsupport.StoreSM, testsupport.StoreRobinsons))

	result, err := Run(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	require.Len(t, result.Groups, 6)
	for _, g := range result.Groups {
		stores := map[any]struct{}{}
		for _, rec := range g.Records {
			v, _ := rec.Value("retail_store")
			stores[v] = struct{}{}
		}
		assert.Len(t, stores, 1, "cluster %d spans stores", g.ClusterID)
	}
}

func TestRunWithoutBlockingJoinsStores(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithStores(testsupport.StoreSM, testsupport.StoreRobinsons),
		testsupport.WithoutBlocking(),
	)

	result, err := Run(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, expectedNames(2), groupNames(t, result.Groups))
}

func TestRunIncludesMetadata(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Output.IncludeMetadata = true

	result, err := Run(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	rows := map[int]string{}
	for _, g := range result.Groups {
		for _, rec := range g.Records {
			var meta struct {
				Row int    `json:"row"`
				SKU string `json:"sku"`
			}
			require.NoError(t, json.Unmarshal(rec.Metadata, &meta))
			rows[meta.Row] = meta.SKU
		}
	}
	assert.Len(t, rows, len(testsupport.ProductNames))
	assert.Equal(t, "SM-1", rows[1])
	assert.Equal(t, "SM-6", rows[6])
}

func TestRunSQLiteInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE observations (observed_name TEXT, retail_store TEXT, sku TEXT)`)
	require.NoError(t, err)
	for _, row := range testsupport.ProductRows(testsupport.StoreSM) {
		_, err = db.Exec(`INSERT INTO observations VALUES (?, ?, ?)`, row[0], row[1], row[2])
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	cfg := testsupport.NewConfig(t, testsupport.WithInput(config.Input{
		Path:            path,
		Format:          config.FormatSQLite,
		Query:           "SELECT observed_name, retail_store, sku FROM observations",
		MetadataColumns: []string{"sku"},
	}))

	result, err := Run(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, expectedNames(1), groupNames(t, result.Groups))
}

func TestRunErrors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		cfg := testsupport.NewConfig(t)
		cfg.Input.Path = filepath.Join(t.TempDir(), "absent.csv")

		_, err := Run(context.Background(), cfg, logging.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInput)
		assert.Equal(t, ExitInput, ExitCode(err))
	})

	t.Run("missing column", func(t *testing.T) {
		cfg := testsupport.NewConfig(t)
		cfg.Input.MetadataColumns = []string{"barcode"}

		_, err := Run(context.Background(), cfg, logging.NewNop())
		assert.ErrorIs(t, err, source.ErrMissingColumn)
		assert.ErrorIs(t, err, ErrInput)
	})

	t.Run("cancelled", func(t *testing.T) {
		cfg := testsupport.NewConfig(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Run(ctx, cfg, logging.NewNop())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, ExitInterrupted, ExitCode(err))
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := Run(context.Background(), nil, nil)
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestBuildSchemaComparators(t *testing.T) {
	cfg := config.Default()
	cfg.Fields = []config.Field{
		{Name: "exact", Comparator: config.ComparatorExact, TrueMatchProbability: 0.9, FalseMatchProbability: 0.1},
		{Name: "fold", Comparator: config.ComparatorFold, TrueMatchProbability: 0.9, FalseMatchProbability: 0.1},
		{Name: "ratio", Comparator: config.ComparatorRatio, MinSimilarity: 70, TrueMatchProbability: 0.8, FalseMatchProbability: 0.2},
		{Name: "tokens", Comparator: config.ComparatorTokenCosine, MinSimilarity: 0.5, TrueMatchProbability: 0.9, FalseMatchProbability: 0.1, Exclude: true},
	}

	schema, err := BuildSchema(&cfg)
	require.NoError(t, err)
	assert.False(t, schema.Blocking())

	tests := []struct {
		field string
		a, b  string
		want  bool
	}{
		{"exact", "Acme", "Acme", true},
		{"exact", "Acme", "acme", false},
		{"fold", "Acme", "ACME", true},
		{"fold", "Acme", "Apex", false},
		{"ratio", testsupport.ProductNames[0], testsupport.ProductNames[2], true},
		{"ratio", testsupport.ProductNames[0], testsupport.DistinctProductName, false},
		{"tokens", "acme widget corp", "acme widget corp", true},
		{"tokens", "acme widget", "zenith gears", false},
	}
	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.a+"/"+tt.b, func(t *testing.T) {
			f, ok := schema.Field(tt.field)
			require.True(t, ok)
			got, err := f.Match(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	ratio, _ := schema.Field("ratio")
	m, u := ratio.Probabilities()
	assert.Equal(t, 0.8, m)
	assert.Equal(t, 0.2, u)
	tokens, _ := schema.Field("tokens")
	assert.True(t, tokens.Excluded())
}

func TestBuildSchemaRejectsUnknownComparator(t *testing.T) {
	cfg := config.Default()
	cfg.Fields = []config.Field{{Name: "x", Comparator: "soundex", TrueMatchProbability: 0.9, FalseMatchProbability: 0.1}}
	_, err := BuildSchema(&cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, ExitConfiguration, ExitCode(err))
}

func TestBlockingKeyDerivations(t *testing.T) {
	tests := []struct {
		derive string
		length int
		value  string
		want   string
	}{
		{config.DeriveValue, 0, "Robinsons", "Robinsons"},
		{config.DeriveFold, 0, "Robinsons", "robinsons"},
		{config.DeriveFirstChar, 0, "Robinsons", "R"},
		{config.DeriveLastChar, 0, "Robinsons", "s"},
		{config.DeriveEndChars, 2, "Robinsons", "Rons"},
		{config.DeriveEndChars, 3, "SM", "SM"},
		{config.DeriveFirstChar, 0, "Ñandú", "Ñ"},
	}
	for _, tt := range tests {
		t.Run(tt.derive+"/"+tt.value, func(t *testing.T) {
			cfg := config.Default()
			cfg.Fields = []config.Field{{Name: "store", Comparator: config.ComparatorExact, TrueMatchProbability: 0.9, FalseMatchProbability: 0.1}}
			cfg.BlockingKeys = []config.BlockingKey{{Name: "k", Field: "store", Derive: tt.derive, Length: tt.length}}
			schema, err := BuildSchema(&cfg)
			require.NoError(t, err)

			ref, err := schema.New(map[string]any{"store": tt.value}, nil)
			require.NoError(t, err)
			keys := ref.BlockingValues()
			require.Len(t, keys, 1)
			assert.Equal(t, tt.want, keys[0].Value)
		})
	}
}

func TestBlockingKeySkipsMissingValues(t *testing.T) {
	cfg := config.Default()
	cfg.Fields = []config.Field{{Name: "store", Comparator: config.ComparatorExact, TrueMatchProbability: 0.9, FalseMatchProbability: 0.1}}
	cfg.BlockingKeys = []config.BlockingKey{{Name: "k", Field: "store", Derive: config.DeriveValue}}
	schema, err := BuildSchema(&cfg)
	require.NoError(t, err)

	ref, err := schema.New(map[string]any{}, nil)
	require.NoError(t, err)
	assert.Empty(t, ref.BlockingValues())
}

func TestBuildReferences(t *testing.T) {
	cfg := config.Default()
	cfg.Fields = []config.Field{{Name: "name", Column: "full_name", Comparator: config.ComparatorFold, TrueMatchProbability: 0.9, FalseMatchProbability: 0.1}}
	cfg.Input.MetadataColumns = []string{"id", "note"}
	schema, err := BuildSchema(&cfg)
	require.NoError(t, err)

	refs, err := BuildReferences(schema, &cfg, []source.Row{
		{Line: 1, Values: map[string]string{"full_name": "Ada", "id": "7"}},
		{Line: 2, Values: map[string]string{"id": "8"}},
	})
	require.NoError(t, err)
	require.Len(t, refs, 2)

	v, ok := refs[0].Value("name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", v)
	assert.JSONEq(t, `{"row":1,"id":"7"}`, string(refs[0].Metadata()))

	_, ok = refs[1].Value("name")
	assert.False(t, ok, "absent column is a missing value")
}

func TestWrapAndExitCode(t *testing.T) {
	base := context.Canceled
	err := Wrap(ErrResolve, "resolve", "partitioned", "", base)
	assert.ErrorIs(t, err, ErrResolve)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "resolve: partitioned")
	assert.Equal(t, ExitInterrupted, ExitCode(err))

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(Wrap(ErrResolve, "", "", "", nil)))
	assert.Equal(t, ExitConfiguration, ExitCode(Wrap(ErrValidation, "build", "", "", nil)))
	assert.Contains(t, Wrap(nil, "", "", "", nil).Error(), "pipeline failure")
}
