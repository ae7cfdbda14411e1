package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"username": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "username"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_SortedAndStable(t *testing.T) {
	updates := map[string]interface{}{
		"role":      "EDITOR",
		"email":     "a@b.com",
		"full_name": "Alice",
		"username":  "alice",
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)
	assert.Equal(t, "email", ue1.Names["#f0"])
	assert.Equal(t, "full_name", ue1.Names["#f1"])
	assert.Equal(t, "role", ue1.Names["#f2"])
	assert.Equal(t, "username", ue1.Names["#f3"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2, #f3 = :v3", ue1.Expr)
}

func TestBuildUpdateExpr_TimeMarshalsAsString(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ue, err := buildUpdateExpr(map[string]interface{}{"updated_at": ts})
	require.NoError(t, err)
	s, ok := ue.Values[":v0"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "2026-03-01T09:00:00Z", s.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}
