package defaults

type selectorKind int

const (
	selectAll selectorKind = iota
	selectOne
	selectMany
)

// Selector chooses which whitelisted attributes an operation touches. The
// zero value selects all whitelisted attributes. Single-name selectors are
// strict: a name outside the whitelist fails the operation. List selectors
// are lenient: unknown names are dropped silently.
type Selector struct {
	kind  selectorKind
	name  string
	names []string
}

// All selects every whitelisted attribute.
func All() Selector {
	return Selector{}
}

// Attr selects a single attribute by name. Save and Load reject names
// outside the whitelist with an InvalidAttributeError.
func Attr(name string) Selector {
	return Selector{kind: selectOne, name: name}
}

// Attrs selects the given attribute names. Names outside the whitelist are
// ignored.
func Attrs(names ...string) Selector {
	return Selector{kind: selectMany, names: append([]string(nil), names...)}
}
