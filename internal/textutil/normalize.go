// Package textutil provides pure text normalization helpers used by the
// matcher, the conflict trackers and the local classifier.
package textutil

import (
	"regexp"
	"strings"
)

// companySuffixes are corporate suffixes stripped during company name
// normalization (English and German forms).
var companySuffixes = []string{
	"inc", "inc.", "llc", "llc.", "ltd", "ltd.",
	"gmbh", "ag", "corp", "corp.", "corporation",
	"company", "co.",
}

var (
	emailAddrRegex  = regexp.MustCompile(`[\w.-]+@[\w.-]+`)
	senderNameRegex = regexp.MustCompile(`^([^<]+)\s*<`)
	subdomainRegex  = regexp.MustCompile(`^(www|mail|careers|jobs|recruiting|talent)\.`)
)

// NormalizeText normalizes text for comparison: lowercase, trimmed, with
// runs of whitespace collapsed to single spaces.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// NormalizeCompanyName normalizes a company name for matching by
// lowercasing, stripping corporate suffixes and collapsing whitespace.
func NormalizeCompanyName(company string) string {
	normalized := strings.ToLower(strings.TrimSpace(company))
	if normalized == "" {
		return ""
	}

	for _, suffix := range companySuffixes {
		bare := strings.TrimSuffix(suffix, ".")
		for {
			trimmed := trimSuffixWord(normalized, bare)
			if trimmed == normalized {
				break
			}
			normalized = trimmed
		}
	}

	return strings.Join(strings.Fields(normalized), " ")
}

// trimSuffixWord removes a trailing word (with optional period) preceded by
// whitespace, e.g. "acme inc." -> "acme".
func trimSuffixWord(s, word string) string {
	t := strings.TrimRight(s, " ")
	t = strings.TrimSuffix(t, ".")
	if strings.HasSuffix(t, " "+word) {
		return strings.TrimRight(strings.TrimSuffix(t, word), " ")
	}
	return s
}

// ExtractEmailAddress extracts the bare address from a sender field such as
// "Jane Doe <jane@example.com>". Returns the lowercased input when no
// address pattern is found.
func ExtractEmailAddress(senderField string) string {
	if senderField == "" {
		return ""
	}

	if match := emailAddrRegex.FindString(senderField); match != "" {
		return strings.ToLower(match)
	}
	return strings.ToLower(senderField)
}

// ExtractEmailDomain extracts the domain part of an email address,
// tolerating "Name <addr>" sender fields.
func ExtractEmailDomain(email string) string {
	if email == "" || !strings.Contains(email, "@") {
		return ""
	}

	match := emailAddrRegex.FindString(email)
	if match == "" {
		return ""
	}

	parts := strings.SplitN(match, "@", 2)
	return strings.ToLower(parts[1])
}

// ExtractSenderName extracts the display name from a sender field.
func ExtractSenderName(senderField string) string {
	if senderField == "" {
		return ""
	}

	if match := senderNameRegex.FindStringSubmatch(senderField); match != nil {
		name := strings.TrimSpace(match[1])
		name = strings.Trim(name, `"'`)
		return name
	}

	if idx := strings.Index(senderField, "@"); idx >= 0 {
		return senderField[:idx]
	}
	return senderField
}

// ExtractDomainCompanyName derives a company name from a domain, e.g.
// "careers.google.com" -> "google".
func ExtractDomainCompanyName(domain string) string {
	if domain == "" {
		return ""
	}

	domain = subdomainRegex.ReplaceAllString(domain, "")

	parts := strings.Split(domain, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return domain
}

// TruncateText truncates text to maxLength runes with an ellipsis.
func TruncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}

// ContainsAnyKeyword reports whether text contains any of the keywords,
// case-insensitively.
func ContainsAnyKeyword(text string, keywords []string) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
