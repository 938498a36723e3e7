package gridchain

import (
	"errors"
	"testing"
)

func mustViolate(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		cv, ok := r.(*ContractViolation)
		if !ok {
			t.Fatalf("%s: expected *ContractViolation panic, got %v", op, r)
		}
		if cv.Op != op {
			t.Fatalf("violation op = %q, want %q", cv.Op, op)
		}
		if !errors.Is(cv, ErrContractViolation) {
			t.Fatalf("violation does not match ErrContractViolation")
		}
	}()
	fn()
}

func TestDerivedPredicatesNeedOldValue(t *testing.T) {
	e := NewEntry("k")
	e.SetValue("v")

	mustViolate(t, "IsModified", func() { e.IsModified() })
	mustViolate(t, "IsCreated", func() { e.IsCreated() })
	mustViolate(t, "IsRemoved", func() { e.IsRemoved() })
	mustViolate(t, "OldValue", func() { e.OldValue() })

	if !e.IsDirty() {
		t.Fatalf("IsDirty must be defined without the old value")
	}
}

func TestDerivedPredicates(t *testing.T) {
	cases := []struct {
		name                       string
		present                    bool
		write                      func(*Entry)
		modified, created, removed bool
	}{
		{"untouched hit", true, func(*Entry) {}, false, false, false},
		{"create", false, func(e *Entry) { e.SetValue(1) }, true, true, false},
		{"update", true, func(e *Entry) { e.SetValue(2) }, true, false, false},
		{"remove existing", true, func(e *Entry) { e.Remove() }, true, false, true},
		{"remove absent", false, func(e *Entry) { e.Remove() }, true, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEntry("k")
			e.RecordOldValue("old", Metadata{Version: 3}, tc.present)
			tc.write(e)
			if got := e.IsModified(); got != tc.modified {
				t.Fatalf("IsModified=%v want %v", got, tc.modified)
			}
			if got := e.IsCreated(); got != tc.created {
				t.Fatalf("IsCreated=%v want %v", got, tc.created)
			}
			if got := e.IsRemoved(); got != tc.removed {
				t.Fatalf("IsRemoved=%v want %v", got, tc.removed)
			}
		})
	}
}

func TestRecordOldValueSeedsCurrentValue(t *testing.T) {
	e := NewEntry("k")
	e.RecordOldValue(nil, Metadata{}, false)
	if e.HasValue() {
		t.Fatalf("miss must leave the entry empty")
	}
	// a later source may refresh the old value until the entry is written
	e.RecordOldValue("stored", Metadata{Version: 7}, true)
	if e.Value() != "stored" || e.Metadata().Version != 7 {
		t.Fatalf("value=%v meta=%+v", e.Value(), e.Metadata())
	}
	if v, ok := e.OldValue(); !ok || v != "stored" {
		t.Fatalf("OldValue=%v,%v", v, ok)
	}

	e.SetValue("new")
	mustViolate(t, "RecordOldValue", func() { e.RecordOldValue("x", Metadata{}, true) })
}

func TestSetLocalityOnce(t *testing.T) {
	e := NewEntry("k")
	if e.Locality() != Primary {
		t.Fatalf("zero locality should be Primary")
	}
	e.SetLocality(Backup)
	e.SetLocality(Backup)
	mustViolate(t, "SetLocality", func() { e.SetLocality(None) })
}

func TestLocalityPredicates(t *testing.T) {
	if !Backup.ReadsExisting() || WriteOnlyBackup.ReadsExisting() || None.ReadsExisting() {
		t.Fatalf("ReadsExisting mismatch")
	}
	if !WriteOnlyBackup.IsOwner() || None.IsOwner() {
		t.Fatalf("IsOwner mismatch")
	}
	if WriteOnlyBackup.String() != "write_only_backup" {
		t.Fatalf("String=%q", WriteOnlyBackup.String())
	}
}

func TestInvocationKeepsFirstTouchOrder(t *testing.T) {
	iv := NewInvocation()
	EntryFor(iv, "b")
	EntryFor(iv, "a")
	EntryFor(iv, "b").SetValue(1)
	iv.PutEntry(NewEntry("a"))

	es := iv.Entries()
	if len(es) != 2 || es[0].Key() != "b" || es[1].Key() != "a" {
		t.Fatalf("order: %v", es)
	}
	if iv.LookupEntry("b").Value() != 1 {
		t.Fatalf("EntryFor must return the existing entry")
	}
	if iv.LookupEntry("a").IsDirty() {
		t.Fatalf("PutEntry should replace the entry")
	}
}
