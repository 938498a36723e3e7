package gridchain

import "time"

// Locality classifies this node's role for a key within one invocation.
type Locality uint8

const (
	// Primary applies the write and produces the caller's result.
	Primary Locality = iota
	// Backup applies the write; its result is not returned to the caller.
	Backup
	// WriteOnlyBackup applies the write without reading prior state.
	WriteOnlyBackup
	// None is not responsible for the key.
	None
)

func (l Locality) String() string {
	switch l {
	case Primary:
		return "primary"
	case Backup:
		return "backup"
	case WriteOnlyBackup:
		return "write_only_backup"
	case None:
		return "none"
	default:
		return "unknown"
	}
}

// IsOwner reports whether the node stores the key at all.
func (l Locality) IsOwner() bool { return l != None }

// ReadsExisting reports whether prior state should be fetched for the key.
func (l Locality) ReadsExisting() bool { return l == Primary || l == Backup }

// Metadata travels with a value through the container and the store.
type Metadata struct {
	Version  uint64
	Lifespan time.Duration // 0 => backend default
}

// Entry is the per-key record of one invocation. It is created by the first
// stage that touches the key and is only ever used by one goroutine at a time.
type Entry struct {
	key string

	value    any
	meta     Metadata
	oldValue any
	oldMeta  Metadata

	hasOld     bool
	oldPresent bool
	dirty      bool
	removed    bool
	loaded     bool
	skipLookup bool

	locality    Locality
	localitySet bool
}

func NewEntry(key string) *Entry {
	return &Entry{key: key}
}

func (e *Entry) Key() string { return e.key }

// Value is the current value; nil when absent or removed.
func (e *Entry) Value() any { return e.value }

func (e *Entry) HasValue() bool { return e.value != nil && !e.removed }

func (e *Entry) SetValue(v any) {
	e.value = v
	e.removed = false
	e.dirty = true
}

func (e *Entry) Remove() {
	e.value = nil
	e.removed = true
	e.dirty = true
}

func (e *Entry) Metadata() Metadata     { return e.meta }
func (e *Entry) SetMetadata(m Metadata) { e.meta = m }

// RecordOldValue records the state that existed before this invocation; present
// is false when the key was known to be absent. It may be refreshed (a container
// miss followed by a store hit) until the entry is first written.
func (e *Entry) RecordOldValue(v any, meta Metadata, present bool) {
	if e.dirty {
		violate("RecordOldValue", "entry "+e.key+" already written in this invocation")
	}
	e.hasOld = true
	e.oldPresent = present
	e.oldValue, e.oldMeta = v, meta
	if present {
		e.value, e.meta = v, meta
	} else {
		e.value, e.meta = nil, Metadata{}
	}
}

func (e *Entry) HasOldValue() bool { return e.hasOld }

// OldValue returns the prior value and whether one existed.
func (e *Entry) OldValue() (any, bool) {
	e.mustHaveOld("OldValue")
	return e.oldValue, e.oldPresent
}

func (e *Entry) OldMetadata() Metadata {
	e.mustHaveOld("OldMetadata")
	return e.oldMeta
}

// IsModified reports whether the entry was written in this invocation.
func (e *Entry) IsModified() bool {
	e.mustHaveOld("IsModified")
	return e.dirty
}

// IsCreated reports a write to a key that had no prior value.
func (e *Entry) IsCreated() bool {
	e.mustHaveOld("IsCreated")
	return e.dirty && !e.removed && !e.oldPresent
}

// IsRemoved reports a removal of a key that had a prior value.
func (e *Entry) IsRemoved() bool {
	e.mustHaveOld("IsRemoved")
	return e.removed && e.oldPresent
}

// IsDirty reports a write in this invocation without requiring the old value.
// Blind writes use it; everything else should prefer IsModified.
func (e *Entry) IsDirty() bool { return e.dirty }

// IsRemovalPending reports a Remove in this invocation.
func (e *Entry) IsRemovalPending() bool { return e.removed }

func (e *Entry) Loaded() bool { return e.loaded }
func (e *Entry) SetLoaded()   { e.loaded = true }

// SkipLookup marks an entry whose prior state must not be fetched.
func (e *Entry) SkipLookup() bool     { return e.skipLookup }
func (e *Entry) SetSkipLookup(b bool) { e.skipLookup = b }

func (e *Entry) Locality() Locality { return e.locality }

// SetLocality assigns the key's role once per invocation.
func (e *Entry) SetLocality(l Locality) {
	if e.localitySet && e.locality != l {
		violate("SetLocality", "locality of "+e.key+" already set to "+e.locality.String())
	}
	e.locality = l
	e.localitySet = true
}

func (e *Entry) mustHaveOld(op string) {
	if !e.hasOld {
		violate(op, "old value of "+e.key+" is not known yet")
	}
}
