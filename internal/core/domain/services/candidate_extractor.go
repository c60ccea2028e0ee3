package services

import (
	"regexp"
	"strings"

	"github.com/ttacon/libphonenumber"

	"manifest/internal/core/domain/model/item"
)

// DefaultPhoneRegion is used when the extractor is created without a region.
const DefaultPhoneRegion = "JP"

var (
	trackingCodePattern = regexp.MustCompile(`\b\d{4}-?\d{4}-?\d{4}\b|\b[A-Z]{2}\d{9}[A-Z]{2}\b`)
	postalCodePattern   = regexp.MustCompile(`〒?\s*(\d{3})-(\d{4})`)
	phonePattern        = regexp.MustCompile(`(?:\+?\d[\d\- ()]{8,}\d)`)
	honorificPattern    = regexp.MustCompile(`^(.+?)\s*(?:様|殿|さま)\s*$`)
	prefecturePattern   = regexp.MustCompile(`^(?:東京都|北海道|(?:京都|大阪)府|.{2,3}県)`)
)

// Candidates are suggested label fields. Any of them may be empty.
type Candidates struct {
	Code       string
	Name       string
	PostalCode string
	Phone      string
	Address    string
}

// CandidateExtractor turns recognized label text into field suggestions.
// Results are heuristic and reproducible: the same text always yields the same
// candidates.
type CandidateExtractor struct {
	region string
}

// NewCandidateExtractor creates an extractor that validates phone numbers for region
// (an ISO 3166 code such as "JP").
func NewCandidateExtractor(region string) CandidateExtractor {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultPhoneRegion
	}
	return CandidateExtractor{region: region}
}

// Extract scans text line by line and keeps the first plausible value per field.
func (e CandidateExtractor) Extract(text string) Candidates {
	var c Candidates
	lines := splitLines(text)

	for i, line := range lines {
		if c.Code == "" {
			if m := trackingCodePattern.FindString(line); m != "" {
				c.Code = m
				continue
			}
		}
		if c.PostalCode == "" {
			if m := postalCodePattern.FindStringSubmatch(line); m != nil {
				c.PostalCode = m[1] + "-" + m[2]
				rest := strings.TrimSpace(postalCodePattern.ReplaceAllString(line, ""))
				if c.Address == "" {
					if rest != "" {
						c.Address = rest
					} else if i+1 < len(lines) {
						c.Address = lines[i+1]
					}
				}
				continue
			}
		}
		if c.Phone == "" {
			if phone, ok := e.phone(line); ok {
				c.Phone = phone
				continue
			}
		}
		if c.Name == "" {
			if m := honorificPattern.FindStringSubmatch(line); m != nil {
				c.Name = strings.TrimSpace(m[1])
				continue
			}
		}
		if c.Address == "" && prefecturePattern.MatchString(line) {
			c.Address = line
		}
	}

	return c
}

// ApplyTo copies suggestions into the empty fields of candidate and returns the
// names of the fields it filled. Values the operator already entered are kept.
func (c Candidates) ApplyTo(candidate *item.Candidate) []string {
	var filled []string
	fill := func(dst *string, v, field string) {
		if strings.TrimSpace(*dst) == "" && v != "" {
			*dst = v
			filled = append(filled, field)
		}
	}

	fill(&candidate.Code, c.Code, "code")
	fill(&candidate.Name, c.Name, "name")
	fill(&candidate.Phone, c.Phone, "phone")

	address := c.Address
	if address != "" && c.PostalCode != "" {
		address = "〒" + c.PostalCode + " " + address
	}
	fill(&candidate.Address, address, "address")

	return filled
}

func (e CandidateExtractor) phone(line string) (string, bool) {
	raw := phonePattern.FindString(line)
	if raw == "" {
		return "", false
	}
	num, err := libphonenumber.Parse(raw, e.region)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return "", false
	}
	return libphonenumber.Format(num, libphonenumber.NATIONAL), true
}

func splitLines(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
