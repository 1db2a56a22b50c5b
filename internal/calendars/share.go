package calendars

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// ShareSlug shortens a calendar UUID to 22 URL-safe characters for public
// links. Ids that are not UUIDs are returned unchanged.
func ShareSlug(id string) string {
	u, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return base64.RawURLEncoding.EncodeToString(u[:])
}

// ParseShareSlug reverses ShareSlug. A full UUID is accepted as well.
func ParseShareSlug(slug string) (string, error) {
	if u, err := uuid.Parse(slug); err == nil {
		return u.String(), nil
	}
	b, err := base64.RawURLEncoding.DecodeString(slug)
	if err != nil {
		return "", fmt.Errorf("decode share slug: %w", err)
	}
	u, err := uuid.FromBytes(b)
	if err != nil {
		return "", fmt.Errorf("decode share slug: %w", err)
	}
	return u.String(), nil
}
