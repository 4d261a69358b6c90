package lib

// Set is a string set. The zero value is usable for reads.
type Set map[string]struct{}

func NewSet() Set {
	return make(Set)
}

func (s Set) Add(value ...string) {
	for _, v := range value {
		s[v] = struct{}{}
	}
}

func (s Set) Remove(value string) bool {
	_, c := s[value]
	delete(s, value)
	return c
}

func (s Set) Len() int {
	return len(s)
}

func (s Set) ToSlice() []string {
	var keys []string
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}
