package action

import (
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
)

// Translate looks up a matched object's tag value in a lookup-table
// object's tags (treating the matched value as a key into the table)
// and replaces it with the corresponding value. If NewTag is set, the
// translated value is written to a new tag named "<key>:local" instead
// of overwriting the source tag.
type Translate struct {
	rule.BaseAction
	Keys   []string
	Table  osm.Object
	NewTag bool
}

func (Translate) Name() string { return "translate" }

func (t Translate) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	if t.Table == nil {
		return rule.OK, nil
	}
	tags := o.GetTags()
	for _, key := range t.Keys {
		val, ok := tags.Get(key)
		if !ok {
			continue
		}
		translated, ok := t.Table.GetTags().Get(val)
		if !ok {
			continue
		}
		if t.NewTag {
			tags = tags.Set(key+":local", translated)
		} else {
			tags = tags.Set(key, translated)
		}
	}
	o.SetTags(tags)
	return rule.OK, nil
}
