package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	p := Parse(httptest.NewRequest("GET", "/api/proyectos", nil))
	if p.Page != 1 || p.Size != DefaultPageSize {
		t.Errorf("got %+v", p)
	}
}

func TestParse_Explicit(t *testing.T) {
	p := Parse(httptest.NewRequest("GET", "/api/proyectos?page=3&page_size=10", nil))
	if p.Page != 3 || p.Size != 10 {
		t.Errorf("got %+v", p)
	}
	if p.Skip() != 20 || p.Limit() != 10 {
		t.Errorf("skip=%d limit=%d", p.Skip(), p.Limit())
	}
}

func TestParse_InvalidFallsBack(t *testing.T) {
	p := Parse(httptest.NewRequest("GET", "/api/proyectos?page=-1&page_size=zero", nil))
	if p.Page != 1 || p.Size != DefaultPageSize {
		t.Errorf("got %+v", p)
	}
}

func TestParse_CapsPageSize(t *testing.T) {
	p := Parse(httptest.NewRequest("GET", "/api/proyectos?page_size=5000", nil))
	if p.Size != MaxPageSize {
		t.Errorf("size = %d, want %d", p.Size, MaxPageSize)
	}
}
