// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type testProject struct {
	ID    int64    `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func newTypedTestCache(t *testing.T) *TypedCache[testProject] {
	t.Helper()
	return NewTypedCache[testProject](newTestMemory(t, time.Hour, 0), time.Hour)
}

func TestTypedCache_SetGet(t *testing.T) {
	c := newTypedTestCache(t)
	ctx := context.Background()

	p := &testProject{ID: 1, Title: "Folio", Tags: []string{"go", "htmx"}}
	if err := c.Set(ctx, "project:folio", p); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := c.Get(ctx, "project:folio")
	if !ok {
		t.Fatal("expected cached project")
	}
	if got.ID != 1 || got.Title != "Folio" || len(got.Tags) != 2 {
		t.Errorf("Get = %+v", got)
	}
}

func TestTypedCache_CorruptValueIsMiss(t *testing.T) {
	mem := newTestMemory(t, time.Hour, 0)
	c := NewTypedCache[testProject](mem, time.Hour)
	ctx := context.Background()

	_ = mem.Set(ctx, "bad", []byte("{not json"), 0)
	if _, ok := c.Get(ctx, "bad"); ok {
		t.Error("corrupt entry should be a miss")
	}
}

func TestTypedCache_GetOrSet(t *testing.T) {
	c := newTypedTestCache(t)
	ctx := context.Background()

	calls := 0
	load := func() (*testProject, error) {
		calls++
		return &testProject{ID: 3, Title: "CLI"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrSet(ctx, "project:cli", load)
		if err != nil {
			t.Fatalf("GetOrSet failed: %v", err)
		}
		if got.ID != 3 {
			t.Errorf("ID = %d, want 3", got.ID)
		}
	}
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}
}

func TestTypedCache_GetOrSetErrorNotCached(t *testing.T) {
	c := newTypedTestCache(t)
	ctx := context.Background()

	wantErr := errors.New("backend down")
	_, err := c.GetOrSet(ctx, "k", func() (*testProject, error) { return nil, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("error result must not be cached")
	}
}

func TestTypedCache_GetOrSetConcurrentMisses(t *testing.T) {
	c := newTypedTestCache(t)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	load := func() (*testProject, error) {
		calls.Add(1)
		<-release
		return &testProject{ID: 4}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetOrSet(ctx, "shared", load)
		}()
	}
	time.Sleep(30 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n < 1 || n > 5 {
		t.Errorf("loader calls = %d", n)
	}
	if _, ok := c.Get(ctx, "shared"); !ok {
		t.Error("expected value cached after concurrent load")
	}
}
