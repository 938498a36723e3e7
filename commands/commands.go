// Package commands holds the cache operations dispatched through a gridchain
// pipeline. Every command reads and writes through the InvocationContext only;
// wrapping, loading and persistence are left to the stages.
package commands

import (
	"context"
	"reflect"
	"time"

	"github.com/unkn0wn-root/gridchain"
)

// Get returns the current value of Key, or nil when absent.
type Get struct {
	Key  string
	Flag gridchain.Flags
}

func (c Get) Name() string              { return "get" }
func (c Get) Keys() []string            { return []string{c.Key} }
func (c Get) Flags() gridchain.Flags    { return c.Flag }
func (c Get) NeedsExistingValues() bool { return true }

func (c Get) Perform(_ context.Context, ic gridchain.InvocationContext) (any, error) {
	if e := ic.LookupEntry(c.Key); e != nil && e.HasValue() {
		return e.Value(), nil
	}
	return nil, nil
}

// GetAll returns the present values of Keys. Missing keys are left out.
type GetAll struct {
	KeyList []string
	Flag    gridchain.Flags
}

func (c GetAll) Name() string              { return "get_all" }
func (c GetAll) Keys() []string            { return c.KeyList }
func (c GetAll) Flags() gridchain.Flags    { return c.Flag }
func (c GetAll) NeedsExistingValues() bool { return true }

func (c GetAll) Perform(_ context.Context, ic gridchain.InvocationContext) (any, error) {
	out := make(map[string]any, len(c.KeyList))
	for _, k := range c.KeyList {
		if e := ic.LookupEntry(k); e != nil && e.HasValue() {
			out[k] = e.Value()
		}
	}
	return out, nil
}

// Put writes Value under Key. With ReturnPrevious it returns the prior value;
// otherwise it is a blind write and returns nil.
type Put struct {
	Key            string
	Value          any
	Lifespan       time.Duration
	ReturnPrevious bool
	Flag           gridchain.Flags
}

func (c Put) Name() string              { return "put" }
func (c Put) Keys() []string            { return []string{c.Key} }
func (c Put) Flags() gridchain.Flags    { return c.Flag }
func (c Put) NeedsExistingValues() bool { return c.ReturnPrevious }

func (c Put) Perform(_ context.Context, ic gridchain.InvocationContext) (any, error) {
	if c.Value == nil {
		return nil, ErrNilValue
	}
	e := gridchain.EntryFor(ic, c.Key)
	var prev any
	if c.ReturnPrevious && e.HasValue() {
		prev = e.Value()
	}
	e.SetValue(c.Value)
	meta := e.Metadata()
	meta.Lifespan = c.Lifespan
	e.SetMetadata(meta)
	return prev, nil
}

// Remove deletes Key and returns the value it held, if any.
type Remove struct {
	Key  string
	Flag gridchain.Flags
}

func (c Remove) Name() string              { return "remove" }
func (c Remove) Keys() []string            { return []string{c.Key} }
func (c Remove) Flags() gridchain.Flags    { return c.Flag }
func (c Remove) NeedsExistingValues() bool { return true }

func (c Remove) Perform(_ context.Context, ic gridchain.InvocationContext) (any, error) {
	e := gridchain.EntryFor(ic, c.Key)
	var prev any
	if e.HasValue() {
		prev = e.Value()
	}
	e.Remove()
	return prev, nil
}

// Replace writes Value only if Key currently holds Expected. It returns whether
// the write happened.
type Replace struct {
	Key      string
	Expected any
	Value    any
	Flag     gridchain.Flags
}

func (c Replace) Name() string              { return "replace" }
func (c Replace) Keys() []string            { return []string{c.Key} }
func (c Replace) Flags() gridchain.Flags    { return c.Flag }
func (c Replace) NeedsExistingValues() bool { return true }

func (c Replace) Perform(_ context.Context, ic gridchain.InvocationContext) (any, error) {
	if c.Value == nil {
		return nil, ErrNilValue
	}
	e := ic.LookupEntry(c.Key)
	if e == nil || !e.HasValue() || !reflect.DeepEqual(e.Value(), c.Expected) {
		return false, nil
	}
	e.SetValue(c.Value)
	return true, nil
}

// Invalidate removes every key in Keys.
type Invalidate struct {
	KeyList []string
	Flag    gridchain.Flags
}

func (c Invalidate) Name() string              { return "invalidate" }
func (c Invalidate) Keys() []string            { return c.KeyList }
func (c Invalidate) Flags() gridchain.Flags    { return c.Flag }
func (c Invalidate) NeedsExistingValues() bool { return true }

func (c Invalidate) Perform(_ context.Context, ic gridchain.InvocationContext) (any, error) {
	for _, k := range c.KeyList {
		gridchain.EntryFor(ic, k).Remove()
	}
	return nil, nil
}
