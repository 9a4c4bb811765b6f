package leaks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	id  string
	val int
}

func mergeItems(prior, returned []item, retracted []string) []item {
	return mergeByID(prior, returned, retracted, func(i *item) string { return i.id })
}

func TestMergeByID(t *testing.T) {
	prior := []item{{"a", 1}, {"b", 2}, {"c", 3}}

	tests := []struct {
		name      string
		returned  []item
		retracted []string
		want      []item
	}{
		{
			name: "empty revision keeps prior",
			want: prior,
		},
		{
			name:     "returned item replaces prior in place",
			returned: []item{{"b", 20}},
			want:     []item{{"a", 1}, {"b", 20}, {"c", 3}},
		},
		{
			name:     "new items are appended in returned order",
			returned: []item{{"e", 5}, {"d", 4}},
			want:     []item{{"a", 1}, {"b", 2}, {"c", 3}, {"e", 5}, {"d", 4}},
		},
		{
			name:      "retracted item is dropped",
			retracted: []string{"a", "zzz"},
			want:      []item{{"b", 2}, {"c", 3}},
		},
		{
			name:      "returned wins over retraction",
			returned:  []item{{"a", 10}},
			retracted: []string{"a"},
			want:      []item{{"a", 10}, {"b", 2}, {"c", 3}},
		},
		{
			name:     "full reconciled list",
			returned: []item{{"c", 30}, {"a", 10}, {"b", 20}, {"d", 4}},
			want:     []item{{"a", 10}, {"b", 20}, {"c", 30}, {"d", 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeItems(prior, tt.returned, tt.retracted))
		})
	}
}

func TestMergeByID_NoPrior(t *testing.T) {
	got := mergeItems(nil, []item{{"x", 1}}, nil)
	assert.Equal(t, []item{{"x", 1}}, got)
}

type keyed struct {
	id, key string
}

func TestAdoptPriorIDs(t *testing.T) {
	id := func(k *keyed) string { return k.id }
	key := func(k *keyed) string { return k.key }
	setID := func(k *keyed, v string) { k.id = v }

	prior := []keyed{{"p1", "netflix"}, {"p2", "saas"}, {"p3", "saas"}}
	returned := []keyed{
		{"r1", "saas"},
		{"p2", "renamed"},
		{"r2", "saas"},
		{"r3", "netflix"},
		{"r4", ""},
		{"r5", "shipping"},
	}
	adoptPriorIDs(prior, returned, id, key, setID)

	// p2 is echoed directly, so the saas keys fall through to p3; the second
	// saas item has nothing left to claim.
	assert.Equal(t, []keyed{
		{"p3", "saas"},
		{"p2", "renamed"},
		{"r2", "saas"},
		{"p1", "netflix"},
		{"r4", ""},
		{"r5", "shipping"},
	}, returned)
}
