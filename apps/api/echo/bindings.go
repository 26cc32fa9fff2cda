package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

var (
	limitParam  = "limit"
	offsetParam = "offset"

	maxPageSize = 200
)

// Pagination binds the `limit` and `offset` query params. Out-of-range or
// unparsable values fall back to the repository defaults.
type Pagination struct {
	Limit  int
	Offset int
}

func (p *Pagination) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}

	if val, ok := data[limitParam]; ok && len(val) > 0 {
		if limit, err := strconv.Atoi(val[0]); err == nil && limit > 0 {
			if limit > maxPageSize {
				limit = maxPageSize
			}
			p.Limit = limit
		}
	}
	if val, ok := data[offsetParam]; ok && len(val) > 0 {
		if offset, err := strconv.Atoi(val[0]); err == nil && offset > 0 {
			p.Offset = offset
		}
	}
}
