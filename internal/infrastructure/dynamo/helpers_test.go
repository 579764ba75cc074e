package dynamo

import (
	"sort"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortKeyTime_LexicographicOrderMatchesChronological(t *testing.T) {
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	// Sub-second fractions of different widths are the case a naive
	// RFC3339Nano encoding gets wrong: "...00.5Z" sorts after "...00.52Z".
	times := []time.Time{
		base.Add(520 * time.Millisecond),
		base.Add(500 * time.Millisecond),
		base.Add(2 * time.Second),
		base,
		base.Add(time.Second),
	}
	keys := make([]string, len(times))
	for i, ts := range times {
		keys[i] = sortKeyTime(ts)
	}
	sort.Strings(keys)
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i := range times {
		assert.Equal(t, sortKeyTime(times[i]), keys[i])
	}
	// Fixed width regardless of fraction.
	for _, k := range keys {
		assert.Len(t, k, len("2026-08-31T12:00:00Z"))
	}
}

func TestSortKeyTime_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2026, 8, 31, 17, 30, 0, 0, loc)
	assert.Equal(t, "2026-08-31T12:00:00Z", sortKeyTime(ts))
}

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"name": "Asha"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "name"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"status":     "verifying",
		"utr_number": "UTR123",
		"email":      "a@b.com",
	}
	// Call twice to verify determinism.
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys must be sorted: email < status < utr_number
	assert.Equal(t, "email", ue1.Names["#f0"])
	assert.Equal(t, "status", ue1.Names["#f1"])
	assert.Equal(t, "utr_number", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"verified": true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}
