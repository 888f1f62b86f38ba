package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(target string) Params {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor("/")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Fatalf("expected defaults, got %+v", p)
	}
}

func TestFromContext_CapsLimit(t *testing.T) {
	p := paramsFor("/?limit=5000")
	if p.Limit != MaxLimit {
		t.Fatalf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_NegativeValues(t *testing.T) {
	p := paramsFor("/?limit=-5&offset=-10")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Fatalf("expected sanitized params, got %+v", p)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse(nil, 50, 20, 0)
	if !r.HasMore {
		t.Fatal("expected has_more with 30 items remaining")
	}
	r = NewResponse(nil, 50, 20, 40)
	if r.HasMore {
		t.Fatal("expected has_more=false on the last page")
	}
}
