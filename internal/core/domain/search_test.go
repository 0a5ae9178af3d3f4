package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSet_Clone(t *testing.T) {
	t.Run("nil clones to nil", func(t *testing.T) {
		var f FilterSet
		assert.Nil(t, f.Clone())
	})

	t.Run("clone does not alias", func(t *testing.T) {
		f := FilterSet{"city": "Seoul"}
		c := f.Clone()
		c["city"] = "Busan"
		assert.Equal(t, "Seoul", f["city"])
	})
}

func TestFilterSet_With(t *testing.T) {
	var f FilterSet
	g := f.With("category", "shoes")

	assert.Nil(t, f)
	assert.Equal(t, FilterSet{"category": "shoes"}, g)

	h := g.With("sort", "price")
	assert.Len(t, g, 1)
	assert.Len(t, h, 2)
}

func TestSearchResponse_ResultCount(t *testing.T) {
	tests := []struct {
		name string
		resp SearchResponse
		want int
	}{
		{"no meta uses page size", SearchResponse{Results: []ResultItem{{}, {}}}, 2},
		{"meta total wins", SearchResponse{Results: []ResultItem{{}}, Meta: &SearchMeta{TotalResults: 40}}, 40},
		{"zero total falls back", SearchResponse{Results: []ResultItem{{}}, Meta: &SearchMeta{}}, 1},
		{"empty", SearchResponse{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.ResultCount())
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "shoes", NormalizeQuery("  shoes \t"))
	assert.Equal(t, "Red Shoes", NormalizeQuery("Red Shoes"))
	assert.Equal(t, "", NormalizeQuery("   "))
}

func TestResultItem_Title(t *testing.T) {
	tests := []struct {
		name string
		item ResultItem
		want string
	}{
		{"title wins", ResultItem{"title": "Trail runner", "name": "x"}, "Trail runner"},
		{"name fallback", ResultItem{"name": "Acme", "id": "1"}, "Acme"},
		{"empty title skipped", ResultItem{"title": "", "label": "Label"}, "Label"},
		{"numeric id", ResultItem{"id": float64(42)}, "42"},
		{"decoded numeric id", ResultItem{"id": json.Number("9007199254740993")}, "9007199254740993"},
		{"nothing usable", ResultItem{"price": 10.0}, ""},
		{"nil item", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.Title())
		})
	}
}
