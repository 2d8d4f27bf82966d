package donation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/geocoder89/reliefhub/internal/store"
)

// Entry is one donor's row on the leaderboard.
type Entry struct {
	Name          any     `json:"name"`
	Email         any     `json:"email"`
	Category      any     `json:"category"`
	TotalQuantity float64 `json:"totalQuantity"`
}

// Leaderboard groups donations by email and sums their quantity. Emails are
// compared by their string form, so 1 and "1" share a row, as do null and
// "null". Name and category are taken from the first donation seen for an
// email. Rows are ordered by descending total. Equal totals keep group
// order: emails that read as array indexes first, ascending, then the rest
// by first appearance.
func Leaderboard(donations []store.Document) []Entry {
	index := make(map[string]int)
	entries := make([]Entry, 0)
	keys := make([]string, 0)

	for _, d := range donations {
		email, present := d["email"]
		key := groupKey(email, present)
		qty := Number(d["quantity"])

		if i, ok := index[key]; ok {
			entries[i].TotalQuantity += qty
			continue
		}

		index[key] = len(entries)
		keys = append(keys, key)
		entries = append(entries, Entry{
			Name:          d["name"],
			Email:         d["email"],
			Category:      d["category"],
			TotalQuantity: qty,
		})
	}

	entries = groupOrder(keys, entries)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalQuantity > entries[j].TotalQuantity
	})

	return entries
}

// groupOrder moves index-like keys ahead of the others in ascending numeric
// order, leaving the rest in insertion order.
func groupOrder(keys []string, entries []Entry) []Entry {
	type indexed struct {
		n uint64
		e Entry
	}

	var ints []indexed
	rest := make([]Entry, 0, len(entries))

	for i, k := range keys {
		if n, ok := arrayIndex(k); ok {
			ints = append(ints, indexed{n: n, e: entries[i]})
			continue
		}
		rest = append(rest, entries[i])
	}

	if len(ints) == 0 {
		return entries
	}

	sort.Slice(ints, func(i, j int) bool { return ints[i].n < ints[j].n })

	out := make([]Entry, 0, len(entries))
	for _, x := range ints {
		out = append(out, x.e)
	}
	return append(out, rest...)
}

func arrayIndex(k string) (uint64, bool) {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(k, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return n, true
}

// TotalAmount sums the amount field across all donations.
func TotalAmount(donations []store.Document) float64 {
	var total float64
	for _, d := range donations {
		total += Number(d["amount"])
	}
	return total
}

// Number reads a numeric field whatever numeric type the store decoded it
// as. Missing and non-numeric values count as 0.
func Number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// groupKey is the string an email coerces to when used as an object key.
func groupKey(v any, present bool) string {
	if !present {
		return "undefined"
	}
	return coerce(v)
}

func coerce(v any) string {
	switch e := v.(type) {
	case nil:
		return "null"
	case string:
		return e
	case bool:
		return strconv.FormatBool(e)
	case float64:
		return formatNumber(e)
	case float32:
		return formatNumber(float64(e))
	case int:
		return strconv.Itoa(e)
	case int32:
		return strconv.FormatInt(int64(e), 10)
	case int64:
		return formatNumber(float64(e))
	case json.Number:
		f, err := e.Float64()
		if err != nil {
			return e.String()
		}
		return formatNumber(f)
	case map[string]any, store.Document:
		return "[object Object]"
	case []any:
		parts := make([]string, len(e))
		for i, x := range e {
			if x != nil {
				parts[i] = coerce(x)
			}
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(e)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// 1e-07 reads as 1e-7
		mant, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
