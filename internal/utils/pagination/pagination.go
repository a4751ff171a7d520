// Package pagination implements keyset (cursor) pagination over ledger
// entry IDs. Offsets would skip or duplicate rows under concurrent
// appends; an id cursor stays stable.
package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Cursor struct {
	Limit    int
	BeforeID uint64
}

// ParseFromRequest reads limit and before_id query parameters.
func ParseFromRequest(c *fiber.Ctx) Cursor {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	beforeID, _ := strconv.ParseUint(c.Query("before_id", "0"), 10, 64)
	return Cursor{
		Limit:    limit,
		BeforeID: beforeID,
	}
}

// Response wraps a page with the cursor for the next one. nextBeforeID
// is the smallest entry ID on this page; zero means the page was empty
// and there is nothing further back.
func Response(data interface{}, nextBeforeID uint64) fiber.Map {
	meta := fiber.Map{}
	if nextBeforeID > 0 {
		meta["next_before_id"] = nextBeforeID
	}
	return fiber.Map{
		"data": data,
		"meta": meta,
	}
}
