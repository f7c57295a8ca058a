// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(3, 250, 25, "/admin/events", url.Values{"level": {"error"}, "page": {"3"}, "empty": {""}})

	if p.TotalPages != 10 {
		t.Errorf("TotalPages = %d, want 10", p.TotalPages)
	}
	if !p.HasPrev || !p.HasNext {
		t.Errorf("HasPrev/HasNext = %v/%v, want true/true", p.HasPrev, p.HasNext)
	}
	if p.QueryString != "level=error" {
		t.Errorf("QueryString = %q, want level=error", p.QueryString)
	}
	if got := p.NextURL(); got != "/admin/events?level=error&page=4" {
		t.Errorf("NextURL() = %q", got)
	}
	if got := p.Offset(); got != 50 {
		t.Errorf("Offset() = %d, want 50", got)
	}

	// 1 2 3 4 5 … 10
	var numbers []int
	for _, page := range p.Pages {
		numbers = append(numbers, page.Number)
	}
	want := []int{1, 2, 3, 4, 5, 0, 10}
	if len(numbers) != len(want) {
		t.Fatalf("pages = %v, want %v", numbers, want)
	}
	for i := range want {
		if numbers[i] != want[i] {
			t.Fatalf("pages = %v, want %v", numbers, want)
		}
	}
	if !p.Pages[2].IsCurrent {
		t.Error("page 3 should be current")
	}
}

func TestBuildPagination_ClampsAndSinglePage(t *testing.T) {
	p := BuildPagination(9, 3, 25, "/admin/events", nil)
	if p.CurrentPage != 1 || p.TotalPages != 1 {
		t.Errorf("CurrentPage/TotalPages = %d/%d, want 1/1", p.CurrentPage, p.TotalPages)
	}
	if p.ShouldShow() {
		t.Error("single page should not show a pager")
	}
	if got := p.PageURL(1); got != "/admin/events?page=1" {
		t.Errorf("PageURL(1) = %q", got)
	}
}

func TestBuildOpenPagination(t *testing.T) {
	p := BuildOpenPagination(2, 20, false, "/admin/users", nil)
	if !p.HasPrev || p.HasNext {
		t.Errorf("HasPrev/HasNext = %v/%v, want true/false", p.HasPrev, p.HasNext)
	}
	if !p.ShouldShow() {
		t.Error("second page should show a pager")
	}
	if got := p.PrevURL(); got != "/admin/users?page=1" {
		t.Errorf("PrevURL() = %q", got)
	}
	if got := p.Offset(); got != 20 {
		t.Errorf("Offset() = %d, want 20", got)
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 25},
		{"per_page=10", 10},
		{"per_page=abc", 25},
		{"per_page=0", 25},
		{"per_page=500", 25},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/?"+tt.query, nil)
		if got := ParseIntParam(r, "per_page", 25, 1, 100); got != tt.want {
			t.Errorf("ParseIntParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}

	if got := ParsePageParam(httptest.NewRequest("GET", "/?page=4", nil)); got != 4 {
		t.Errorf("ParsePageParam = %d, want 4", got)
	}
}

func TestCrumbs(t *testing.T) {
	got := Crumbs("Dashboard", "/admin", "Projects", "/admin/projects")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].URL != "/admin" || got[0].Active {
		t.Errorf("first crumb = %+v", got[0])
	}
	if got[1].URL != "" || !got[1].Active {
		t.Errorf("last crumb = %+v", got[1])
	}
}
