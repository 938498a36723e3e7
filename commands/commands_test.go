package commands

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/unkn0wn-root/gridchain"
)

func seeded(kv map[string]any) *gridchain.Invocation {
	iv := gridchain.NewInvocation()
	for k, v := range kv {
		gridchain.EntryFor(iv, k).RecordOldValue(v, gridchain.Metadata{Version: 1}, true)
	}
	return iv
}

func TestGet(t *testing.T) {
	iv := seeded(map[string]any{"a": "1"})
	v, err := Get{Key: "a"}.Perform(context.Background(), iv)
	if err != nil || v != "1" {
		t.Fatalf("got %v %v", v, err)
	}
	v, _ = Get{Key: "missing"}.Perform(context.Background(), iv)
	if v != nil {
		t.Fatalf("missing key returned %v", v)
	}
}

func TestGetAllSkipsMissing(t *testing.T) {
	iv := seeded(map[string]any{"a": "1", "b": "2"})
	v, _ := GetAll{KeyList: []string{"a", "b", "c"}}.Perform(context.Background(), iv)
	want := map[string]any{"a": "1", "b": "2"}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %v want %v", v, want)
	}
}

func TestPut(t *testing.T) {
	iv := seeded(map[string]any{"a": "old"})

	blind := Put{Key: "a", Value: "new", Lifespan: time.Minute}
	if blind.NeedsExistingValues() {
		t.Fatalf("blind put must not need existing values")
	}
	v, err := blind.Perform(context.Background(), iv)
	if err != nil || v != nil {
		t.Fatalf("blind put returned %v %v", v, err)
	}
	e := iv.LookupEntry("a")
	if e.Value() != "new" || e.Metadata().Lifespan != time.Minute || !e.IsModified() {
		t.Fatalf("entry not updated: %v %+v", e.Value(), e.Metadata())
	}

	prev, _ := Put{Key: "a", Value: "newer", ReturnPrevious: true}.Perform(context.Background(), iv)
	if prev != "new" {
		t.Fatalf("previous = %v", prev)
	}

	if _, err := (Put{Key: "a"}).Perform(context.Background(), iv); !errors.Is(err, ErrNilValue) {
		t.Fatalf("nil value err = %v", err)
	}
}

func TestRemove(t *testing.T) {
	iv := seeded(map[string]any{"a": "old"})
	prev, _ := Remove{Key: "a"}.Perform(context.Background(), iv)
	e := iv.LookupEntry("a")
	if prev != "old" || !e.IsRemoved() || e.HasValue() {
		t.Fatalf("prev=%v removed=%v", prev, e.IsRemoved())
	}
}

func TestReplace(t *testing.T) {
	iv := seeded(map[string]any{"a": "x"})
	ok, _ := Replace{Key: "a", Expected: "y", Value: "z"}.Perform(context.Background(), iv)
	if ok != false || iv.LookupEntry("a").IsModified() {
		t.Fatalf("mismatched replace wrote")
	}
	ok, _ = Replace{Key: "a", Expected: "x", Value: "z"}.Perform(context.Background(), iv)
	if ok != true || iv.LookupEntry("a").Value() != "z" {
		t.Fatalf("replace did not write")
	}
	ok, _ = Replace{Key: "nope", Expected: nil, Value: "z"}.Perform(context.Background(), iv)
	if ok != false {
		t.Fatalf("replace on absent key wrote")
	}
}

func TestInvalidate(t *testing.T) {
	iv := seeded(map[string]any{"a": 1, "b": 2})
	cmd := Invalidate{KeyList: []string{"a", "b"}, Flag: gridchain.SkipCacheStore}
	if _, err := cmd.Perform(context.Background(), iv); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b"} {
		if !iv.LookupEntry(k).IsRemoved() {
			t.Fatalf("%s not removed", k)
		}
	}
	if !gridchain.FlagsOf(cmd).Has(gridchain.SkipCacheStore) {
		t.Fatalf("flags lost")
	}
	if got := gridchain.KeysOf(cmd); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("keys %v", got)
	}
	if gridchain.NameOf(cmd) != "invalidate" {
		t.Fatalf("name %q", gridchain.NameOf(cmd))
	}
}
