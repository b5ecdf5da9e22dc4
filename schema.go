package typedkv

import "github.com/poiesic/typedkv/codec"

// Schema binds a column family name to the codecs of its keys and values.
// Domain packages typically declare one package-level schema per data set.
type Schema[K, V any] interface {
	ColumnFamily() string
	KeyCodec() codec.Codec[K]
	ValueCodec() codec.Codec[V]
}

// NewSchema builds a Schema from a family name and two codecs.
func NewSchema[K, V any](name string, key codec.Codec[K], value codec.Codec[V]) Schema[K, V] {
	return schema[K, V]{name: name, key: key, value: value}
}

type schema[K, V any] struct {
	name  string
	key   codec.Codec[K]
	value codec.Codec[V]
}

func (s schema[K, V]) ColumnFamily() string       { return s.name }
func (s schema[K, V]) KeyCodec() codec.Codec[K]   { return s.key }
func (s schema[K, V]) ValueCodec() codec.Codec[V] { return s.value }
