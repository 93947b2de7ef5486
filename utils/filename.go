package utils

import (
	"fmt"
	"strings"
	"time"

	"idCardStudioAPI/internal/scene"
)

// ExportFilename names a single-card export, embedding orientation and a
// timestamp so downloads never collide.
func ExportFilename(o scene.Orientation) string {
	return fmt.Sprintf("idcard_%s_%d.jpg", o, time.Now().Unix())
}

// BatchFilename names a bulk-export archive.
func BatchFilename() string {
	return fmt.Sprintf("idcards_batch_%d.zip", time.Now().Unix())
}

// Slugify reduces a label to a safe lowercase filename fragment. Returns
// "" when nothing usable remains.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
