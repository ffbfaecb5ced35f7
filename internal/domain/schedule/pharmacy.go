package schedule

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// NameMarker is the literal token every valid pharmacy name carries in the
// source PDFs. Lines without it are rejected during batch parsing, never
// guessed at.
const NameMarker = "FARMACIA"

// phoneRe matches the roster phone convention "Tfno: DDD DDDDDD" with
// optional internal spacing between the area prefix and the number.
var phoneRe = regexp.MustCompile(`(?i)tfno\.?:?\s*(\d{3})\s*(\d{6})`)

// Pharmacy is a single on-duty pharmacy as printed in a roster.
// AdditionalInfo carries whatever free text remained after the phone was
// extracted; empty means the roster printed nothing beyond the phone.
type Pharmacy struct {
	ID             uuid.UUID
	Name           string
	Address        string
	Phone          string
	AdditionalInfo string
}

// NewPharmacy builds a pharmacy record from name, address and the raw info
// blob. The phone is pulled out of the blob with the shared roster pattern;
// the remainder becomes AdditionalInfo.
func NewPharmacy(name, address, info string) Pharmacy {
	phone, rest := ExtractPhone(info)
	return Pharmacy{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(name),
		Address:        strings.TrimSpace(address),
		Phone:          phone,
		AdditionalInfo: rest,
	}
}

// HasValidName reports whether a candidate name line carries the FARMACIA
// marker, case-insensitively.
func HasValidName(name string) bool {
	return strings.Contains(strings.ToUpper(name), NameMarker)
}

// ExtractPhone pulls the first "Tfno: DDD DDDDDD" token out of an info blob.
// It returns the normalized phone ("DDD DDDDDD") and the trimmed remainder
// of the blob with the matched token removed. When no phone is present the
// whole trimmed blob is returned as the remainder.
func ExtractPhone(info string) (phone, remainder string) {
	loc := phoneRe.FindStringSubmatchIndex(info)
	if loc == nil {
		return "", cleanInfo(info)
	}
	m := phoneRe.FindStringSubmatch(info)
	phone = m[1] + " " + m[2]
	remainder = cleanInfo(info[:loc[0]] + info[loc[1]:])
	return phone, remainder
}

func cleanInfo(s string) string {
	s = strings.TrimSpace(s)
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}
