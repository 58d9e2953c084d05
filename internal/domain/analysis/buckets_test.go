package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBuckets(t *testing.T) {
	t.Parallel()

	s := session(
		group("fruit", []string{"apple"},
			group("citrus", []string{"lemon", "lime"}),
		),
		group("tools", []string{"hammer", "ghost"}),
	)

	buckets := ExtractBuckets(&s, []string{"apple", "lemon", "lime", "hammer", "unsorted"})

	assert.Len(t, buckets, 4)
	assert.Equal(t, BucketRef{Index: 0, GroupID: "fruit"}, buckets["apple"])
	assert.Equal(t, BucketRef{Index: 1, GroupID: "citrus"}, buckets["lemon"])
	assert.Equal(t, buckets["lemon"], buckets["lime"])
	assert.Equal(t, BucketRef{Index: 2, GroupID: "tools"}, buckets["hammer"])
	assert.NotContains(t, buckets, "unsorted")
	assert.NotContains(t, buckets, "ghost", "cards outside the analysis set are ignored")
}

func TestExtractBucketsDistinguishesGroupsWithSameID(t *testing.T) {
	t.Parallel()

	s := session(
		group("g", []string{"a"}),
		group("g", []string{"b"}),
	)

	buckets := ExtractBuckets(&s, []string{"a", "b"})
	assert.NotEqual(t, buckets["a"].Index, buckets["b"].Index)
}

func TestExtractBucketsEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractBuckets(nil, []string{"a"}))

	s := session()
	assert.Empty(t, ExtractBuckets(&s, []string{"a"}))

	s = session(group("g", []string{"a"}))
	assert.Empty(t, ExtractBuckets(&s, nil))
}
