package smio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/smrender/smrender/pkg/osm"
)

func writeU8(buf *bytes.Buffer, v uint8)   { buf.WriteByte(v) }
func writeU16(buf *bytes.Buffer, v uint16) { var b [2]byte; binary.LittleEndian.PutUint16(b[:], v); buf.Write(b[:]) }
func writeU32(buf *bytes.Buffer, v uint32) { var b [4]byte; binary.LittleEndian.PutUint32(b[:], v); buf.Write(b[:]) }
func writeI64(buf *bytes.Buffer, v int64)  { var b [8]byte; binary.LittleEndian.PutUint64(b[:], uint64(v)); buf.Write(b[:]) }
func writeF64(buf *bytes.Buffer, v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU16(buf, uint16(len(s)))
	buf.WriteString(s)
}

func writeTags(buf *bytes.Buffer, tags osm.TagList) {
	writeU32(buf, uint32(len(tags)))
	for _, t := range tags {
		writeString(buf, t.Key)
		writeString(buf, t.Value)
	}
}

func writeCommon(buf *bytes.Buffer, kind osm.Kind, id, version, changeset, uid int64, visible bool, ts int64, tags osm.TagList) {
	writeU8(buf, uint8(kind))
	writeI64(buf, id)
	writeI64(buf, version)
	writeI64(buf, changeset)
	writeI64(buf, uid)
	if visible {
		writeU8(buf, 1)
	} else {
		writeU8(buf, 0)
	}
	writeI64(buf, ts)
	writeTags(buf, tags)
}

func writeNode(buf *bytes.Buffer, n *osm.Node) error {
	writeCommon(buf, osm.KindNode, n.ID, n.Version, n.Changeset, n.UID, n.Visible, n.Timestamp.Unix(), n.Tags)
	writeF64(buf, n.Lat)
	writeF64(buf, n.Lon)
	return nil
}

func writeWay(buf *bytes.Buffer, w *osm.Way) error {
	writeCommon(buf, osm.KindWay, w.ID, w.Version, w.Changeset, w.UID, w.Visible, w.Timestamp.Unix(), w.Tags)
	writeU32(buf, uint32(len(w.Refs)))
	for _, ref := range w.Refs {
		writeI64(buf, ref)
	}
	return nil
}

func writeRelation(buf *bytes.Buffer, r *osm.Relation) error {
	writeCommon(buf, osm.KindRelation, r.ID, r.Version, r.Changeset, r.UID, r.Visible, r.Timestamp.Unix(), r.Tags)
	writeU32(buf, uint32(len(r.Members)))
	for _, m := range r.Members {
		writeU8(buf, uint8(m.Kind))
		writeI64(buf, m.ID)
		writeU32(buf, uint32(m.Role))
	}
	return nil
}

func readU8(r *bytes.Reader) (uint8, error)   { return r.ReadByte() }
func readU16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}
func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
func readI64(r *bytes.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
func readF64(r *bytes.Reader) (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU16(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readTags(r *bytes.Reader) (osm.TagList, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	tags := make(osm.TagList, 0, n)
	for i := uint32(0); i < n; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}
		v, err := readString(r)
		if err != nil {
			return nil, err
		}
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	return tags, nil
}

// commonFields mirrors the fixed fields shared by node/way/relation records,
// already consumed past the leading kind byte (the caller reads that to
// dispatch on) by the time common is decoded.
type commonFields struct {
	ID, Version, Changeset, UID int64
	Visible                     bool
	Timestamp                   time.Time
	Tags                        osm.TagList
}

func readCommon(r *bytes.Reader) (commonFields, error) {
	var c commonFields
	var err error
	if c.ID, err = readI64(r); err != nil {
		return c, err
	}
	if c.Version, err = readI64(r); err != nil {
		return c, err
	}
	if c.Changeset, err = readI64(r); err != nil {
		return c, err
	}
	if c.UID, err = readI64(r); err != nil {
		return c, err
	}
	vis, err := readU8(r)
	if err != nil {
		return c, err
	}
	c.Visible = vis != 0
	ts, err := readI64(r)
	if err != nil {
		return c, err
	}
	c.Timestamp = time.Unix(ts, 0).UTC()
	if c.Tags, err = readTags(r); err != nil {
		return c, err
	}
	return c, nil
}

func readNode(r *bytes.Reader) (*osm.Node, error) {
	c, err := readCommon(r)
	if err != nil {
		return nil, fmt.Errorf("node: %w", err)
	}
	lat, err := readF64(r)
	if err != nil {
		return nil, fmt.Errorf("node: %w", err)
	}
	lon, err := readF64(r)
	if err != nil {
		return nil, fmt.Errorf("node: %w", err)
	}
	return &osm.Node{
		Common: osm.Common{ID: c.ID, Version: c.Version, Changeset: c.Changeset, UID: c.UID, Visible: c.Visible, Timestamp: c.Timestamp, Tags: c.Tags},
		Lat:    lat, Lon: lon,
	}, nil
}

func readWay(r *bytes.Reader) (*osm.Way, error) {
	c, err := readCommon(r)
	if err != nil {
		return nil, fmt.Errorf("way: %w", err)
	}
	n, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("way: %w", err)
	}
	refs := make([]int64, n)
	for i := range refs {
		if refs[i], err = readI64(r); err != nil {
			return nil, fmt.Errorf("way: %w", err)
		}
	}
	return &osm.Way{
		Common: osm.Common{ID: c.ID, Version: c.Version, Changeset: c.Changeset, UID: c.UID, Visible: c.Visible, Timestamp: c.Timestamp, Tags: c.Tags},
		Refs:   refs,
	}, nil
}

func readRelation(r *bytes.Reader) (*osm.Relation, error) {
	c, err := readCommon(r)
	if err != nil {
		return nil, fmt.Errorf("relation: %w", err)
	}
	n, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("relation: %w", err)
	}
	members := make([]osm.Member, n)
	for i := range members {
		k, err := readU8(r)
		if err != nil {
			return nil, fmt.Errorf("relation: %w", err)
		}
		id, err := readI64(r)
		if err != nil {
			return nil, fmt.Errorf("relation: %w", err)
		}
		role, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("relation: %w", err)
		}
		members[i] = osm.Member{Kind: osm.Kind(k), ID: id, Role: osm.RoleCode(role)}
	}
	return &osm.Relation{
		Common:  osm.Common{ID: c.ID, Version: c.Version, Changeset: c.Changeset, UID: c.UID, Visible: c.Visible, Timestamp: c.Timestamp, Tags: c.Tags},
		Members: members,
	}, nil
}
