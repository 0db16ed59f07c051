package synonym

import (
	"sort"

	"github.com/turtacn/chemidr/internal/domain/chemical"
)

// Table maps a lookup key (see chemical.LookupKey) to a FooDB id.
type Table map[string]int64

// Lookup returns the id stored for key.
func (t Table) Lookup(key string) chemical.Optional[int64] {
	if id, ok := t[key]; ok {
		return chemical.Some(id)
	}
	return chemical.None[int64]()
}

// Keys returns the keys in ascending order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both tables hold exactly the same entries.
func (t Table) Equal(other Table) bool {
	if len(t) != len(other) {
		return false
	}
	for k, v := range t {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
