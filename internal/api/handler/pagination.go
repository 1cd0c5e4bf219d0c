package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/saccodesk/backoffice/internal/core/domain"
)

// pageQuery reads page and page_size. Missing values take the defaults and an
// oversized page_size is capped.
func pageQuery(c echo.Context) (domain.PageQuery, error) {
	var q domain.PageQuery
	err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("page_size", &q.PageSize).
		BindError()
	if err != nil {
		return q, echo.NewHTTPError(http.StatusBadRequest, "page and page_size must be integers")
	}
	return q.Normalize(), nil
}

// passthrough copies the named query parameters that are present.
func passthrough(c echo.Context, keys ...string) url.Values {
	out := url.Values{}
	for _, k := range keys {
		if v := c.QueryParam(k); v != "" {
			out.Set(k, v)
		}
	}
	return out
}

func newListResponse(p *domain.Page) listResponse {
	return listResponse{
		Data: p.Items,
		Pagination: paginationResponse{
			Count:    p.Count,
			Pages:    p.Pages,
			Page:     p.Page,
			PageSize: p.PageSize,
		},
	}
}

func newWriteResponse(env *domain.Envelope) writeResponse {
	return writeResponse{Message: env.Message, Data: env.Data}
}
