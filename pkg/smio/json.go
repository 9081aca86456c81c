package smio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/smrender/smrender/pkg/osm"
)

// jsonWireObject is WireObject's JSON-serializable shadow: osm.Kind and
// osm.RoleCode are plain ints, which encoding/json already handles, so
// this only exists to give the wire format stable, lowercase field
// names independent of the Go struct's exported names.
type jsonWireObject struct {
	Kind      int                `json:"kind"`
	ID        int64              `json:"id"`
	Version   int64              `json:"version"`
	Changeset int64              `json:"changeset"`
	UID       int64              `json:"uid"`
	Visible   bool               `json:"visible"`
	Timestamp int64              `json:"timestamp"`
	Tags      map[string]string  `json:"tags,omitempty"`
	Lat       float64            `json:"lat,omitempty"`
	Lon       float64            `json:"lon,omitempty"`
	Refs      []int64            `json:"refs,omitempty"`
	Members   []jsonWireMember   `json:"members,omitempty"`
}

type jsonWireMember struct {
	Kind int    `json:"kind"`
	ID   int64  `json:"id"`
	Role string `json:"role,omitempty"`
}

func toJSONWire(w WireObject) jsonWireObject {
	tags := make(map[string]string, len(w.Tags))
	for _, t := range w.Tags {
		tags[t.Key] = t.Value
	}
	members := make([]jsonWireMember, len(w.Members))
	for i, m := range w.Members {
		members[i] = jsonWireMember{Kind: int(m.Kind), ID: m.ID, Role: m.Role}
	}
	return jsonWireObject{
		Kind: int(w.Kind), ID: w.ID, Version: w.Version, Changeset: w.Changeset, UID: w.UID,
		Visible: w.Visible, Timestamp: w.Timestamp, Tags: tags,
		Lat: w.Lat, Lon: w.Lon, Refs: w.Refs, Members: members,
	}
}

func fromJSONWire(j jsonWireObject) WireObject {
	w := WireObject{
		Kind: osm.Kind(j.Kind), ID: j.ID, Version: j.Version, Changeset: j.Changeset, UID: j.UID,
		Visible: j.Visible, Timestamp: j.Timestamp,
		Lat: j.Lat, Lon: j.Lon, Refs: j.Refs,
	}
	for k, v := range j.Tags {
		w.Tags = w.Tags.Set(k, v)
	}
	for _, m := range j.Members {
		w.Members = append(w.Members, WireMember{Kind: osm.Kind(m.Kind), ID: m.ID, Role: m.Role})
	}
	return w
}

// JSONSource reads newline-delimited JSON wire objects, one object per
// line for streaming.
type JSONSource struct {
	dec *json.Decoder
}

// NewJSONSource wraps r as an ObjectSource reading one JSON object per
// call to Next.
func NewJSONSource(r io.Reader) *JSONSource {
	return &JSONSource{dec: json.NewDecoder(r)}
}

func (s *JSONSource) Next() (WireObject, bool, error) {
	var j jsonWireObject
	if err := s.dec.Decode(&j); err != nil {
		if err == io.EOF {
			return WireObject{}, false, nil
		}
		return WireObject{}, false, fmt.Errorf("smio: json decode: %w", err)
	}
	return fromJSONWire(j), true, nil
}

// JSONSink writes newline-delimited JSON wire objects.
type JSONSink struct {
	w   io.Writer
	enc *json.Encoder
}

// NewJSONSink wraps w as an ObjectSink.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w, enc: json.NewEncoder(w)}
}

func (s *JSONSink) Put(w WireObject) error {
	if err := s.enc.Encode(toJSONWire(w)); err != nil {
		return fmt.Errorf("smio: json encode: %w", err)
	}
	return nil
}

func (s *JSONSink) Close() error { return nil }
