package treemap

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestPersistedNodeEncoding(t *testing.T) {
	t.Parallel()
	pn := persistedNode{
		Key:   []byte(`"k"`),
		Value: []byte(`42`),
		Live:  true,
		Level: 3,
		Left:  "left",
		Right: "right",
	}
	decoded, err := unmarshalPersistedNode(pn.marshal())
	require.NoError(t, err)
	require.Equal(t, pn, decoded)
}

func TestTombstoneEncodingOmitsValue(t *testing.T) {
	t.Parallel()
	pn := persistedNode{Key: []byte(`1`), Value: []byte(`"ignored"`), Level: 1}
	decoded, err := unmarshalPersistedNode(pn.marshal())
	require.NoError(t, err)
	require.False(t, decoded.Live)
	require.Nil(t, decoded.Value)
	require.Empty(t, decoded.Left)
	require.Empty(t, decoded.Right)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	t.Parallel()
	pn := persistedNode{Key: []byte(`1`), Level: 2}
	buf := pn.marshal()
	buf = protowire.AppendTag(buf, 99, protowire.BytesType)
	buf = protowire.AppendString(buf, "from a later version")
	decoded, err := unmarshalPersistedNode(buf)
	require.NoError(t, err)
	require.Equal(t, pn, decoded)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	t.Parallel()
	full := (&persistedNode{Key: []byte(`1`), Level: 2, Left: "abc"}).marshal()
	_, err := unmarshalPersistedNode(full[:len(full)-1])
	require.Error(t, err)

	_, err = unmarshalPersistedNode((&persistedNode{Level: 1}).marshal()[2:])
	require.ErrorContains(t, err, "missing key")

	_, err = unmarshalPersistedNode((&persistedNode{Key: []byte(`1`)}).marshal())
	require.ErrorContains(t, err, "missing level")
}

func TestNodeNameIsContentAddress(t *testing.T) {
	t.Parallel()
	a := (&persistedNode{Key: []byte(`1`), Level: 1}).marshal()
	b := (&persistedNode{Key: []byte(`2`), Level: 1}).marshal()
	require.Equal(t, nodeName(a), nodeName(append([]byte(nil), a...)))
	require.NotEqual(t, nodeName(a), nodeName(b))
	require.Len(t, nodeName(a), 43)
}
