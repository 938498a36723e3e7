package gridchain

// InvocationContext is the domain side of one invocation: the entries touched so
// far. Commands read and write through it; stages populate it.
type InvocationContext interface {
	// LookupEntry returns the entry for key, or nil.
	LookupEntry(key string) *Entry
	// PutEntry adds or replaces the entry for e.Key().
	PutEntry(e *Entry)
	// Entries returns entries in first-touch order.
	Entries() []*Entry
}

// Invocation is the default InvocationContext.
type Invocation struct {
	entries map[string]*Entry
	order   []string
}

var _ InvocationContext = (*Invocation)(nil)

func NewInvocation() *Invocation {
	return &Invocation{entries: make(map[string]*Entry)}
}

func (iv *Invocation) LookupEntry(key string) *Entry { return iv.entries[key] }

func (iv *Invocation) PutEntry(e *Entry) {
	if _, ok := iv.entries[e.Key()]; !ok {
		iv.order = append(iv.order, e.Key())
	}
	iv.entries[e.Key()] = e
}

func (iv *Invocation) Entries() []*Entry {
	out := make([]*Entry, 0, len(iv.order))
	for _, k := range iv.order {
		out = append(out, iv.entries[k])
	}
	return out
}

// EntryFor returns the entry for key, creating an empty one if needed.
func EntryFor(ic InvocationContext, key string) *Entry {
	if e := ic.LookupEntry(key); e != nil {
		return e
	}
	e := NewEntry(key)
	ic.PutEntry(e)
	return e
}
