package typedkv

import (
	"bytes"
	"fmt"
	"math"

	"github.com/poiesic/typedkv/codec"
	"github.com/poiesic/typedkv/storage"
	"github.com/rs/zerolog"
)

// The manifest lives in the system keyspace, id 0, and maps every family
// name ever created to its id:
//
//	0x00000000 "cf/" name -> uint32 id, big-endian
//
// User families are numbered from 1. Ids are never reused.
var (
	manifestPrefix = []byte{0, 0, 0, 0, 'c', 'f', '/'}
	manifestEnd    = []byte{0, 0, 0, 0, 'c', 'f', '/' + 1}
)

const manifestName = "<manifest>"

func manifestKey(name string) []byte {
	return append(bytes.Clone(manifestPrefix), name...)
}

// readManifest returns every registered family and the highest id in use.
func readManifest(engine storage.Engine) (map[string]uint32, uint32, error) {
	cur, err := engine.NewCursor(storage.CursorOptions{
		LowerBound: manifestPrefix,
		UpperBound: manifestEnd,
	})
	if err != nil {
		return nil, 0, engineError("read", manifestName, err)
	}
	defer cur.Close()

	ids := make(map[string]uint32)
	var maxID uint32
	for ; cur.Valid(); cur.Next() {
		name := string(cur.Key()[len(manifestPrefix):])
		raw, err := cur.Value()
		if err != nil {
			return nil, 0, engineError("read", manifestName, err)
		}
		id, err := codec.Uint32.Decode(raw)
		if err != nil {
			return nil, 0, decodeError(fmt.Sprintf("id of %q", name), manifestName, err)
		}
		ids[name] = id
		maxID = max(maxID, id)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, engineError("read", manifestName, err)
	}
	return ids, maxID, nil
}

// openFamilies resolves a handle for every descriptor, registering the
// families the manifest does not know yet.
func openFamilies(engine storage.Engine, descs []ColumnFamilyDescriptor, logger zerolog.Logger) (map[string]*columnFamily, error) {
	known, maxID, err := readManifest(engine)
	if err != nil {
		return nil, err
	}

	families := make(map[string]*columnFamily, len(descs))
	for _, desc := range descs {
		id, ok := known[desc.Name]
		if !ok {
			if maxID == math.MaxUint32 {
				return nil, fmt.Errorf("%w: no ids left for %q", ErrInvalidColumnFamily, desc.Name)
			}
			maxID++
			id = maxID

			raw, err := codec.Uint32.Encode(id)
			if err != nil {
				return nil, encodeError("id", manifestName, err)
			}
			if err := engine.Put(manifestKey(desc.Name), raw, storage.WriteOptions{Sync: true}); err != nil {
				return nil, engineError("register", desc.Name, err)
			}
			logger.Info().Str("cf", desc.Name).Uint32("id", id).Msg("column family created")
		}
		families[desc.Name] = newColumnFamily(desc, id)
	}

	for name := range known {
		if _, ok := families[name]; !ok {
			logger.Debug().Str("cf", name).Msg("column family on disk but not opened")
		}
	}
	return families, nil
}
