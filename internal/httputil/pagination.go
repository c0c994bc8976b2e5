package httputil

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
)

var (
	errInvalidOffset = errors.New("invalid offset parameter: must be a non-negative integer")
	errInvalidLimit  = errors.New("invalid limit parameter: must be between 1 and 100")
)

// ParsePage reads the offset and limit query parameters of a search endpoint.
// Missing parameters fall back to offset 0 and database.DefaultLimit; out of range
// values are rejected rather than clamped.
func ParsePage(c *gin.Context) (database.Page, error) {
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		return database.Page{}, errInvalidOffset
	}

	limit, err := queryInt(c, "limit", database.DefaultLimit)
	if err != nil || limit < 1 || limit > database.MaxLimit {
		return database.Page{}, errInvalidLimit
	}

	return database.Page{Offset: offset, Limit: limit}, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
