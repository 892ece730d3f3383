package inspection

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalize_NonObjectsYieldEmptyItem(t *testing.T) {
	inputs := []any{nil, 42, "pipe", true, []any{1, 2}, 3.5, (*Item)(nil)}
	for _, in := range inputs {
		got := Normalize(in)
		if diff := cmp.Diff(Item{}, got); diff != "" {
			t.Errorf("Normalize(%#v) mismatch (-want +got):\n%s", in, diff)
		}
		assert.Nil(t, got.NextInspection)
		assert.Nil(t, got.NextMaintenance)
	}
}

func TestNormalize_FlatShape(t *testing.T) {
	raw := map[string]any{
		"pipeBrand":       "Superflex",
		"PipeType":        "R2AT",
		"nominalDiameter": 0.75,
		"length":          json.Number("2.50"),
		"result":          "A",
		"nextInspection":  "2025-03-01T00:00:00Z",
		"nextMaintenance": "",
		"leakage":         false,
		"observations":    nil,
	}

	got := Normalize(raw)

	want := Item{
		PipeBrand:       "Superflex",
		PipeType:        "R2AT",
		NominalDiameter: "0.75",
		Length:          "2.50",
		Result:          "A",
		Leakage:         "N",
		NextInspection:  strPtr("2025-03-01T00:00:00Z"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_StepShape(t *testing.T) {
	raw := map[string]any{
		"step1Data": map[string]any{"hoseBrand": "Gates", "identification": "TAG-07"},
		"step2Data": map[string]any{"WorkingPressure": 210},
		"step4Data": map[string]any{"finalResult": "R", "nextMaintenanceDate": "2025-06-15"},
		"step5Data": map[string]any{"remarks": "cover abraded"},
	}

	got := Normalize(raw)

	assert.Equal(t, "Gates", got.PipeBrand)
	assert.Equal(t, "TAG-07", got.Tag)
	assert.Equal(t, "210", got.WorkingPressure)
	assert.Equal(t, "R", got.Result)
	assert.Equal(t, "cover abraded", got.Observations)
	require.NotNil(t, got.NextMaintenance)
	assert.Equal(t, "2025-06-15", *got.NextMaintenance)
	assert.Nil(t, got.NextInspection)
}

func TestNormalize_YAMLMapShape(t *testing.T) {
	raw := map[any]any{"pipeBrand": "Parker", 7: "ignored"}
	assert.Equal(t, "Parker", Normalize(raw).PipeBrand)
}

func TestNormalize_StringKeyedMaps(t *testing.T) {
	type brand string
	flat := map[string]string{"pipeBrand": "Superflex", "tag": "T-01"}
	assert.Equal(t, "Superflex", Normalize(flat).PipeBrand)
	assert.Equal(t, "T-01", Normalize(flat).Tag)

	stepped := map[string]any{"step2Data": map[string]string{"hoseBrand": "Superflex"}}
	assert.Equal(t, "Superflex", Normalize(stepped).PipeBrand)

	named := map[brand]any{"pipeBrand": brand("Gates"), "workingPressure": int32(350)}
	got := Normalize(named)
	assert.Equal(t, "Gates", got.PipeBrand)
	assert.Equal(t, "350", got.WorkingPressure)

	h, ok := NormalizeHeader(map[string]string{"client": "ACME"})
	require.True(t, ok)
	assert.Equal(t, "ACME", h.Client)

	assert.Equal(t, Item{}, Normalize(map[int]string{1: "x"}))
}

func TestNormalize_Precedence(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{
			name: "camelCase beats PascalCase",
			raw:  map[string]any{"pipeBrand": "camel", "PipeBrand": "pascal"},
			want: "camel",
		},
		{
			name: "flat beats steps",
			raw: map[string]any{
				"PipeBrand": "pascal",
				"step1Data": map[string]any{"hoseBrand": "step"},
			},
			want: "pascal",
		},
		{
			name: "alternate name beats PascalCase in the same step",
			raw: map[string]any{
				"step1Data": map[string]any{"PipeBrand": "pascal", "hoseBrand": "alt"},
			},
			want: "alt",
		},
		{
			name: "earlier step wins",
			raw: map[string]any{
				"step3Data": map[string]any{"hoseBrand": "three"},
				"step2Data": map[string]any{"PipeBrand": "two"},
			},
			want: "two",
		},
		{
			name: "empty string falls through",
			raw: map[string]any{
				"pipeBrand": "",
				"step5Data": map[string]any{"hoseBrand": "five"},
			},
			want: "five",
		},
		{
			name: "non-object step is skipped",
			raw: map[string]any{
				"step1Data": "garbage",
				"step2Data": map[string]any{"hoseBrand": "two"},
			},
			want: "two",
		},
		{
			name: "nested objects are not values",
			raw:  map[string]any{"pipeBrand": map[string]any{"name": "x"}},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw).PipeBrand)
		})
	}
}

func TestResolution_ChainIsAuditable(t *testing.T) {
	chain := Resolution("pipeBrand")
	names := make([]string, len(chain))
	for i, acc := range chain {
		names[i] = acc.String()
	}

	want := []string{
		"pipeBrand", "PipeBrand",
		"step1Data.hoseBrand", "step1Data.PipeBrand",
		"step2Data.hoseBrand", "step2Data.PipeBrand",
		"step3Data.hoseBrand", "step3Data.PipeBrand",
		"step4Data.hoseBrand", "step4Data.PipeBrand",
		"step5Data.hoseBrand", "step5Data.PipeBrand",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("resolution chain mismatch (-want +got):\n%s", diff)
	}
}

func TestResolution_EveryFieldHasAChain(t *testing.T) {
	for _, f := range Fields() {
		chain := Resolution(f.Key)
		assert.Len(t, chain, 2+2*StepCount, f.Key)
	}
}

func TestFields_Shape(t *testing.T) {
	assert.Len(t, Fields(), 24)
	cols := RenderedFields()
	require.Len(t, cols, 23)
	assert.Equal(t, "tag", cols[0].Key)
	assert.Equal(t, "observations", cols[len(cols)-1].Key)

	nullable := 0
	for _, f := range Fields() {
		if f.Nullable() {
			nullable++
		}
	}
	assert.Equal(t, 2, nullable)
}

func TestNormalize_EveryFieldPresentAsStringOrNil(t *testing.T) {
	it := Normalize(map[string]any{})
	for _, f := range Fields() {
		assert.Equal(t, "", f.Get(&it), f.Key)
	}
	assert.Nil(t, it.NextInspection)
	assert.Nil(t, it.NextMaintenance)
}

func TestParseItem(t *testing.T) {
	it, err := ParseItem(json.RawMessage(`{"pipeBrand":"Superflex"}`))
	require.NoError(t, err)
	assert.Equal(t, "Superflex", it.PipeBrand)

	it, err = ParseItem(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Equal(t, Item{}, it)

	_, err = ParseItem([]byte(`{"pipeBrand":`))
	assert.Error(t, err)
}

func TestItems(t *testing.T) {
	t.Run("accepted shapes", func(t *testing.T) {
		shapes := []any{
			[]any{map[string]any{}, nil},
			[]map[string]any{{}, {}},
			[]json.RawMessage{json.RawMessage(`{}`), json.RawMessage(`{}`)},
			json.RawMessage(`[{}, 3]`),
			[]Item{{}, {}},
			[]*Item{{}, nil},
			[]map[string]string{{"pipeBrand": "Superflex"}, {}},
			[2]any{nil, nil},
			[]byte(`[{}, {}]`),
		}
		for _, s := range shapes {
			list, err := Items(s)
			require.NoError(t, err, "%T", s)
			assert.Len(t, list, 2, "%T", s)
		}
	})

	t.Run("rejected shapes", func(t *testing.T) {
		for _, s := range []any{nil, "items", map[string]any{}, json.RawMessage(`{}`), json.RawMessage(`null`)} {
			_, err := Items(s)
			assert.ErrorIs(t, err, ErrItemsNotList, "%#v", s)
		}
	})

	t.Run("empty list is still a list", func(t *testing.T) {
		list, err := Items(json.RawMessage(`[]`))
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestNormalizeHeader(t *testing.T) {
	h, ok := NormalizeHeader(map[string]any{"Client": "ACME", "date": "2024-03-15T00:00:00Z"})
	require.True(t, ok)
	assert.Equal(t, &Header{Client: "ACME", InspectionDate: "2024-03-15T00:00:00Z"}, h)

	_, ok = NormalizeHeader(nil)
	assert.False(t, ok)
	_, ok = NormalizeHeader((*Header)(nil))
	assert.False(t, ok)
	_, ok = NormalizeHeader("ACME")
	assert.False(t, ok)
}
