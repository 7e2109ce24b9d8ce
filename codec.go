package treemap

import (
	"encoding/base64"
	"fmt"

	"github.com/minio/blake2b-simd"
	"google.golang.org/protobuf/encoding/protowire"
)

// persistedNode is the stored form of a node. Children are referred to
// by name; an empty name is the empty tree.
type persistedNode struct {
	Key   []byte
	Value []byte
	Live  bool
	Level uint64
	Left  string
	Right string
}

// Field numbers of the protobuf wire encoding of persistedNode.
const (
	fieldKey   protowire.Number = 1
	fieldValue protowire.Number = 2
	fieldLive  protowire.Number = 3
	fieldLevel protowire.Number = 4
	fieldLeft  protowire.Number = 5
	fieldRight protowire.Number = 6
)

func (pn *persistedNode) marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldKey, protowire.BytesType)
	buf = protowire.AppendBytes(buf, pn.Key)
	if pn.Live {
		buf = protowire.AppendTag(buf, fieldValue, protowire.BytesType)
		buf = protowire.AppendBytes(buf, pn.Value)
		buf = protowire.AppendTag(buf, fieldLive, protowire.VarintType)
		buf = protowire.AppendVarint(buf, protowire.EncodeBool(true))
	}
	buf = protowire.AppendTag(buf, fieldLevel, protowire.VarintType)
	buf = protowire.AppendVarint(buf, pn.Level)
	if pn.Left != "" {
		buf = protowire.AppendTag(buf, fieldLeft, protowire.BytesType)
		buf = protowire.AppendString(buf, pn.Left)
	}
	if pn.Right != "" {
		buf = protowire.AppendTag(buf, fieldRight, protowire.BytesType)
		buf = protowire.AppendString(buf, pn.Right)
	}
	return buf
}

func unmarshalPersistedNode(buf []byte) (persistedNode, error) {
	var pn persistedNode
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return pn, fmt.Errorf("tag: %w", protowire.ParseError(n))
		}
		buf = buf[n:]
		switch {
		case num == fieldKey && typ == protowire.BytesType:
			pn.Key, n = protowire.ConsumeBytes(buf)
		case num == fieldValue && typ == protowire.BytesType:
			pn.Value, n = protowire.ConsumeBytes(buf)
		case num == fieldLive && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(buf)
			pn.Live = protowire.DecodeBool(v)
		case num == fieldLevel && typ == protowire.VarintType:
			pn.Level, n = protowire.ConsumeVarint(buf)
		case num == fieldLeft && typ == protowire.BytesType:
			pn.Left, n = protowire.ConsumeString(buf)
		case num == fieldRight && typ == protowire.BytesType:
			pn.Right, n = protowire.ConsumeString(buf)
		default:
			n = protowire.ConsumeFieldValue(num, typ, buf)
		}
		if n < 0 {
			return pn, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		buf = buf[n:]
	}
	if pn.Key == nil {
		return pn, fmt.Errorf("missing key")
	}
	if pn.Level == 0 {
		return pn, fmt.Errorf("missing level")
	}
	return pn, nil
}

// nodeName is the content address of an encoded node.
func nodeName(encoded []byte) string {
	hashBytes := blake2b.Sum256(encoded)
	return base64.RawURLEncoding.EncodeToString(hashBytes[:])
}
