package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIKeyPrefix starts every generated API key
const APIKeyPrefix = "kc_key_"

// generateID generates a new UUID
func generateID() string {
	return uuid.New().String()
}

// generateAPIKey generates a new API key
func generateAPIKey() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s%s", APIKeyPrefix, hex.EncodeToString(b))
}

// hashAPIKey hashes an API key for storage
func hashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// checkTime normalizes a timestamp to the precision both databases keep.
func checkTime(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Truncate(time.Microsecond)
}

// encodeCursor builds a cursor pointing after the given check.
func encodeCursor(c Check) string {
	return strconv.FormatInt(c.CreatedAt.UnixMicro(), 10) + "_" + c.ID
}

// decodeCursor parses a cursor built by encodeCursor.
func decodeCursor(cursor string) (time.Time, string, error) {
	micros, id, ok := strings.Cut(cursor, "_")
	if !ok || id == "" {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}
	n, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}
	return time.UnixMicro(n).UTC(), id, nil
}

// page trims a result set queried with limit+1 rows.
func page(checks []Check, limit int) *PaginatedResult[Check] {
	hasMore := len(checks) > limit
	if hasMore {
		checks = checks[:limit]
	}
	var next string
	if hasMore && len(checks) > 0 {
		next = encodeCursor(checks[len(checks)-1])
	}
	return &PaginatedResult[Check]{Data: checks, HasMore: hasMore, NextCursor: next}
}
