package report

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	fileNamePrefix  = "hose-inspection"
	fileStampLayout = "20060102-150405"
	maxClientLen    = 60
)

// FileName derives the download name for a report generated for client at
// t: hose-inspection_<client>_<YYYYMMDD-HHMMSS>.pdf.
func FileName(client string, t time.Time) string {
	return fileNamePrefix + "_" + sanitizeClient(client) + "_" + t.Format(fileStampLayout) + ".pdf"
}

// sanitizeClient folds diacritics to ASCII and reduces the rest to
// [A-Za-z0-9-], joined by single underscores.
func sanitizeClient(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
		if b.Len() >= maxClientLen {
			break
		}
	}

	out := strings.Trim(b.String(), "-_")
	if len(out) > maxClientLen {
		out = out[:maxClientLen]
	}
	if out == "" {
		return "client"
	}
	return out
}
