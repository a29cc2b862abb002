package concept

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompareIdentity(t *testing.T) {
	a := NewIdentity("person-1")
	b := NewIdentity("person-1")
	c := NewIdentity("person-2")

	require.Equal(t, 0, Compare(a, b))
	require.True(t, Equal(a, b))
	require.NotEqual(t, 0, Compare(a, c))
}

func TestCompareNumericCrossType(t *testing.T) {
	require.Equal(t, 0, Compare(int(5), int64(5)))
	require.Equal(t, -1, Compare(int64(1), float64(1.5)))
	require.Equal(t, 1, Compare(float64(2.5), int64(2)))
}

func TestCompareTime(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	require.Equal(t, -1, Compare(t1, t2))
	require.Equal(t, 1, Compare(t2, t1))
	require.Equal(t, 0, Compare(t1, t1))
}

func TestCompareNilOrdersFirst(t *testing.T) {
	require.Equal(t, -1, Compare(nil, "x"))
	require.Equal(t, 1, Compare("x", nil))
	require.Equal(t, 0, Compare(nil, nil))
}

func TestIdentityRoundTripViaHash(t *testing.T) {
	original := NewIdentity("relation-42")
	fromHash := NewIdentityFromHash(original.Hash())
	require.True(t, original.Equal(fromHash))
	require.Equal(t, original.L85(), fromHash.String())
}
