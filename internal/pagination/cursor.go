package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Cursor is the opaque pagination state we encode/decode. LastUnix (the
// declared ordering field, in millis) plus the row ID establish a stable
// keyset cursor.
type Cursor struct {
	LastUnix int64  `json:"last_unix"`
	ID       string `json:"id"`
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) string {
	b, _ := json.Marshal(c)
	return base64.URLEncoding.EncodeToString(b)
}

// Decode parses a Base64 string into a Cursor.
// Empty token means first page.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, errors.New("invalid pagination token")
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, errors.New("invalid pagination token")
	}
	return c, nil
}

// Apply restricts a query ordered by col DESC, id DESC to rows strictly
// after the cursor position. Column names are table-qualified so the scope
// works on joined queries too.
func Apply(c Cursor, table, col string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if c.LastUnix == 0 {
			return db
		}
		at := time.UnixMilli(c.LastUnix).UTC()
		qualified := table + "." + col
		return db.Where(
			qualified+" < ? OR ("+qualified+" = ? AND "+table+".id < ?)",
			at, at, c.ID,
		)
	}
}

// NextToken builds the token for the page following the given last row, or
// an empty string when the page was not full.
func NextToken(last time.Time, id string, got, limit int) string {
	if got < limit {
		return ""
	}
	return Encode(Cursor{LastUnix: last.UnixMilli(), ID: id})
}
