package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// FactionRank is one entry of the player's faction map.
type FactionRank struct {
	Name string
	Rank int
}

// FactionRanks is a JSON object of faction name to rank that keeps the
// order the keys appear in the document. Ties between equal ranks are
// broken by that order.
type FactionRanks []FactionRank

// Item is one entry of the actor's item map.
type Item struct {
	Name  string
	Count int
}

// Items is a JSON object of item name to count in document order.
type Items []Item

func (f *FactionRanks) UnmarshalJSON(data []byte) error {
	out := FactionRanks{}
	err := forEachInt(data, "factions", func(name string, n int) {
		out = append(out, FactionRank{Name: name, Rank: n})
	})
	if err != nil {
		return err
	}
	*f = out
	return nil
}

func (f FactionRanks) MarshalJSON() ([]byte, error) {
	pairs := make([]pair, len(f))
	for i, r := range f {
		pairs[i] = pair{r.Name, r.Rank}
	}
	return marshalPairs(pairs)
}

func (it *Items) UnmarshalJSON(data []byte) error {
	out := Items{}
	err := forEachInt(data, "items", func(name string, n int) {
		out = append(out, Item{Name: name, Count: n})
	})
	if err != nil {
		return err
	}
	*it = out
	return nil
}

func (it Items) MarshalJSON() ([]byte, error) {
	pairs := make([]pair, len(it))
	for i, item := range it {
		pairs[i] = pair{item.Name, item.Count}
	}
	return marshalPairs(pairs)
}

// forEachInt walks a JSON object of string keys to integer values in
// document order. A null value decodes to an empty set.
func forEachInt(data []byte, field string, fn func(string, int)) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%s: invalid JSON", field)
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("%s: expected an object, got %s", field, res.Type)
	}

	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			err = fmt.Errorf("%s: value for %q must be a number, got %s", field, key.String(), value.Type)
			return false
		}
		fn(key.String(), int(value.Int()))
		return true
	})
	return err
}

type pair struct {
	key   string
	value int
}

func marshalPairs(pairs []pair) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(p.key)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		fmt.Fprintf(&b, ":%d", p.value)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
