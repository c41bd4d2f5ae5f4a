package geocode

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Normalize ensures consistent cache keys: accents are folded to ASCII,
// whitespace collapsed and case lowered.
func Normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(unidecode.Unidecode(address)), " "))
}
