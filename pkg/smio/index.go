package smio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/trie"
)

// indexMagic and indexVersion identify the persisted binary index
// header: "SMRENDER.INDEX\0", version 1.
const (
	indexMagic   = "SMRENDER.INDEX\x00"
	indexVersion = uint32(1)
)

// IndexFlags is the header's flags bitfield. FlagDirty stays set until
// a full write completes, so a reader can detect a truncated or
// interrupted index.
type IndexFlags uint32

const FlagDirty IndexFlags = 1 << 0

// WriteIndex serializes store to the binary index format: header,
// interned role strings, then node/way/relation sections in that
// order. Each object is emitted as its fixed fields followed by its
// tag list and refs/members.
func WriteIndex(path string, store *trie.Store) error {
	var buf bytes.Buffer

	buf.WriteString(indexMagic)
	writeU32(&buf, indexVersion)
	writeU32(&buf, uint32(FlagDirty))

	roles := store.Roles
	roleStrings := internedRoles(roles)
	writeU32(&buf, uint32(len(roleStrings)))
	for _, s := range roleStrings {
		writeU16(&buf, uint16(len(s)))
		buf.WriteString(s)
	}

	var nodeErr error
	store.Nodes.Traverse(func(_ int64, n *osm.Node) int {
		if err := writeNode(&buf, n); err != nil {
			nodeErr = err
			return -1
		}
		return 0
	})
	if nodeErr != nil {
		return nodeErr
	}

	var wayErr error
	store.Ways.Traverse(func(_ int64, w *osm.Way) int {
		if err := writeWay(&buf, w); err != nil {
			wayErr = err
			return -1
		}
		return 0
	})
	if wayErr != nil {
		return wayErr
	}

	var relErr error
	store.Relations.Traverse(func(_ int64, r *osm.Relation) int {
		if err := writeRelation(&buf, r); err != nil {
			relErr = err
			return -1
		}
		return 0
	})
	if relErr != nil {
		return relErr
	}

	// Clear the dirty flag only now that the full body serialized
	// successfully.
	out := buf.Bytes()
	binary.LittleEndian.PutUint32(out[len(indexMagic)+4:], uint32(0))

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("smio: write index: %w", err)
	}
	return nil
}

// ReadIndex loads a binary index previously written by WriteIndex into
// store. It returns an error if the magic, version, or any
// length-prefixed record is inconsistent, so the caller can fall back
// to re-parsing the source dataset.
func ReadIndex(path string, store *trie.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("smio: read index: %w", err)
	}
	r := bytes.NewReader(data)

	magic := make([]byte, len(indexMagic))
	if _, err := r.Read(magic); err != nil || string(magic) != indexMagic {
		return fmt.Errorf("smio: index: bad magic")
	}
	version, err := readU32(r)
	if err != nil || version != indexVersion {
		return fmt.Errorf("smio: index: unsupported version %d", version)
	}
	flags, err := readU32(r)
	if err != nil {
		return fmt.Errorf("smio: index: truncated header")
	}
	if IndexFlags(flags)&FlagDirty != 0 {
		return fmt.Errorf("smio: index: stale (dirty flag set)")
	}

	roleCount, err := readU32(r)
	if err != nil {
		return fmt.Errorf("smio: index: truncated role count")
	}
	roleNames := make([]string, roleCount)
	for i := range roleNames {
		n, err := readU16(r)
		if err != nil {
			return fmt.Errorf("smio: index: truncated role table")
		}
		buf := make([]byte, n)
		if _, err := r.Read(buf); err != nil {
			return fmt.Errorf("smio: index: truncated role string")
		}
		roleNames[i] = string(buf)
	}
	for _, name := range roleNames[1:] {
		store.Roles.Intern(name)
	}

	for {
		kind, err := readU8(r)
		if err != nil {
			break // EOF: end of sections
		}
		switch osm.Kind(kind) {
		case osm.KindNode:
			n, err := readNode(r)
			if err != nil {
				return fmt.Errorf("smio: index: %w", err)
			}
			store.PutNode(n)
		case osm.KindWay:
			w, err := readWay(r)
			if err != nil {
				return fmt.Errorf("smio: index: %w", err)
			}
			store.PutWay(w)
		case osm.KindRelation:
			rel, err := readRelation(r)
			if err != nil {
				return fmt.Errorf("smio: index: %w", err)
			}
			store.PutRelation(rel)
		default:
			return fmt.Errorf("smio: index: unknown object kind %d", kind)
		}
	}
	return nil
}

func internedRoles(rt *osm.RoleTable) []string {
	var out []string
	for i := 0; ; i++ {
		s := rt.String(osm.RoleCode(i))
		if s == "" && i > 0 {
			break
		}
		out = append(out, s)
	}
	return out
}
