package action

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
)

// Strfmt builds a tag value from a printf-like format string that
// pulls successive values from a list of source tag keys. Directives:
// %s copies the raw value, %d truncates to an integer, %f prints as a
// float, %<n>r prints the fractional part scaled by 10^n and rounded
// (used for converting decimal-minute coordinates to seconds), where n
// is a single digit 1-9 written before the 'r' (default 1; a leading
// '0' is skipped), %% and
// %v emit literal '%' and ';'. Each directive consumes the next key in
// Keys, in order; since a rule's Params map holds one value per name,
// repeated keys are spelled as a single comma-separated "keys"
// parameter.
type Strfmt struct {
	rule.BaseAction
	AddTag string
	Format string
	Keys   []string
}

func (Strfmt) Name() string { return "strfmt" }

func (s Strfmt) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	val, err := buildFormatString(s.Format, s.Keys, o.GetTags())
	if err != nil {
		return rule.Result(-1), fmt.Errorf("action: strfmt: %w", err)
	}
	if val == "" {
		return rule.OK, nil
	}
	o.SetTags(o.GetTags().Set(s.AddTag, val))
	return rule.OK, nil
}

func buildFormatString(format string, keys []string, tags osm.TagList) (string, error) {
	var b strings.Builder
	ki := 0
	nextKey := func() (string, bool) {
		if ki >= len(keys) {
			return "", false
		}
		k := keys[ki]
		ki++
		return k, true
	}

	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '%' {
			b.WriteRune(c)
			continue
		}
		i++
		if i >= len(runes) || runes[i] == '%' {
			b.WriteByte('%')
			continue
		}
		if runes[i] == 'v' {
			b.WriteByte(';')
			continue
		}

		prec := 0
		if runes[i] == '0' {
			i++
		}
		if i < len(runes) && runes[i] >= '1' && runes[i] <= '9' {
			prec = int(runes[i] - '0')
			i++
		}
		if prec == 0 {
			prec = 1
		}
		if i >= len(runes) {
			return "", fmt.Errorf("truncated format directive")
		}

		key, ok := nextKey()
		if !ok {
			return "", fmt.Errorf("format string expects more keys")
		}
		val, ok := tags.Get(key)
		if !ok {
			return "", nil
		}

		switch runes[i] {
		case 's':
			b.WriteString(val)
		case 'd':
			v, _ := strconv.ParseFloat(val, 64)
			b.WriteString(strconv.FormatInt(int64(v), 10))
		case 'f':
			v, _ := strconv.ParseFloat(val, 64)
			b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		case 'r':
			v, _ := strconv.ParseFloat(val, 64)
			frac := math.Mod(v, 1.0) * math.Pow(10, float64(prec))
			b.WriteString(strconv.FormatInt(int64(math.Round(frac)), 10))
		default:
			return "", fmt.Errorf("unknown format directive %%%c", runes[i])
		}
	}
	return b.String(), nil
}
