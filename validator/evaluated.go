package validator

// evaluated records the object members and array items of one instance node
// that some subschema has already claimed. unevaluatedProperties and
// unevaluatedItems only apply to what is left.
type evaluated struct {
	props map[string]struct{}
	items map[int]struct{}
}

func newEvaluated() *evaluated {
	return &evaluated{}
}

func (e *evaluated) markProp(name string) {
	if e.props == nil {
		e.props = make(map[string]struct{})
	}
	e.props[name] = struct{}{}
}

func (e *evaluated) hasProp(name string) bool {
	_, ok := e.props[name]
	return ok
}

func (e *evaluated) markItem(i int) {
	if e.items == nil {
		e.items = make(map[int]struct{})
	}
	e.items[i] = struct{}{}
}

func (e *evaluated) hasItem(i int) bool {
	_, ok := e.items[i]
	return ok
}

// clone returns an independent copy.
func (e *evaluated) clone() *evaluated {
	c := &evaluated{}
	for k := range e.props {
		c.markProp(k)
	}
	for i := range e.items {
		c.markItem(i)
	}
	return c
}

// merge adds everything recorded in other.
func (e *evaluated) merge(other *evaluated) {
	for k := range other.props {
		e.markProp(k)
	}
	for i := range other.items {
		e.markItem(i)
	}
}
