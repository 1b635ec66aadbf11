package mmdbwriter

import (
	"bytes"
	"math"
	"math/big"
	"net/netip"
	"testing"

	"github.com/oschwald/maxminddb-golang"
	"github.com/stretchr/testify/require"
)

// minimalDB builds a Database whose root resolves to v for every address,
// mirroring the reference writer's own create_minimal_db test helper.
func minimalDB(t *testing.T, v Encodable) *maxminddb.Reader {
	t.Helper()

	db := New("Test", 4)
	ref, err := db.InsertValue(v)
	require.NoError(t, err)

	db.InsertNode(BitSlice{false}, ref)
	db.InsertNode(BitSlice{true}, ref)

	var buf bytes.Buffer
	_, err = db.WriteTo(&buf)
	require.NoError(t, err)

	reader, err := maxminddb.FromBytes(buf.Bytes())
	require.NoError(t, err)

	return reader
}

func lookupZero[T any](t *testing.T, reader *maxminddb.Reader) T {
	t.Helper()

	var got T
	require.NoError(t, reader.Lookup(netip.MustParseAddr("0.0.0.0")).Decode(&got))

	return got
}

func TestRoundTripScalars(t *testing.T) {
	t.Run("bool false", func(t *testing.T) {
		r := minimalDB(t, Bool(false))
		defer r.Close()
		require.Equal(t, false, lookupZero[bool](t, r))
	})

	t.Run("bool true", func(t *testing.T) {
		r := minimalDB(t, Bool(true))
		defer r.Close()
		require.Equal(t, true, lookupZero[bool](t, r))
	})

	for _, v := range []uint16{0, 42, math.MaxUint16} {
		r := minimalDB(t, Uint16(v))
		require.Equal(t, v, lookupZero[uint16](t, r))
		r.Close()
	}

	for _, v := range []uint32{0, 42, math.MaxUint32} {
		r := minimalDB(t, Uint32(v))
		require.Equal(t, v, lookupZero[uint32](t, r))
		r.Close()
	}

	for _, v := range []uint64{0, 42, math.MaxUint64} {
		r := minimalDB(t, Uint64(v))
		require.Equal(t, v, lookupZero[uint64](t, r))
		r.Close()
	}

	r := minimalDB(t, Uint128{Hi: math.MaxUint64, Lo: math.MaxUint64})
	defer r.Close()

	var got big.Int
	require.NoError(t, r.Lookup(netip.MustParseAddr("0.0.0.0")).Decode(&got))

	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	require.Equal(t, 0, want.Cmp(&got))
}

func TestRoundTripInt32(t *testing.T) {
	for _, v := range []int32{math.MinInt32, -1, 0, math.MaxInt32} {
		r := minimalDB(t, Int32(v))
		require.Equal(t, v, lookupZero[int32](t, r))
		r.Close()
	}
}

func TestRoundTripStrings(t *testing.T) {
	for _, v := range []string{"", "test", "zażółć gęślą jaźń"} {
		r := minimalDB(t, String(v))
		require.Equal(t, v, lookupZero[string](t, r))
		r.Close()
	}
}

func TestRoundTripBytes(t *testing.T) {
	r := minimalDB(t, Bytes{1, 2, 3, 0xFF})
	defer r.Close()
	require.Equal(t, []byte{1, 2, 3, 0xFF}, lookupZero[[]byte](t, r))
}

func TestRoundTripArray(t *testing.T) {
	r := minimalDB(t, Array{Uint32(1), Uint32(2), Uint32(3)})
	defer r.Close()
	require.Equal(t, []uint32{1, 2, 3}, lookupZero[[]uint32](t, r))
}

func TestRoundTripMap(t *testing.T) {
	r := minimalDB(t, Map{"a": Uint32(1), "b": String("two")})
	defer r.Close()

	var got map[string]any
	require.NoError(t, r.Lookup(netip.MustParseAddr("0.0.0.0")).Decode(&got))
	require.EqualValues(t, 1, got["a"])
	require.Equal(t, "two", got["b"])
}

func TestRoundTripNestedRecord(t *testing.T) {
	r := minimalDB(t, Map{
		"name":   String("example"),
		"count":  Uint32(3),
		"values": Array{Uint16(1), Uint16(2)},
	})
	defer r.Close()

	var got struct {
		Name   string   `maxminddb:"name"`
		Count  uint32   `maxminddb:"count"`
		Values []uint16 `maxminddb:"values"`
	}

	require.NoError(t, r.Lookup(netip.MustParseAddr("0.0.0.0")).Decode(&got))
	require.Equal(t, "example", got.Name)
	require.Equal(t, uint32(3), got.Count)
	require.Equal(t, []uint16{1, 2}, got.Values)
}
