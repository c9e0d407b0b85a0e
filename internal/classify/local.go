package classify

import (
	"regexp"
	"strings"

	"github.com/tyagiprnv/Job-Tracker/internal/models"
	"github.com/tyagiprnv/Job-Tracker/internal/textutil"
)

// LocalClassifier is the rule-based, purely local classification path.
// It scores job relatedness from sender domain and keyword tables, maps
// status keywords to the progression enum and extracts company and
// position heuristically.
type LocalClassifier struct {
	keywords  *Keywords
	threshold int
}

// NewLocalClassifier creates a LocalClassifier with the given detection
// threshold.
func NewLocalClassifier(keywords *Keywords, threshold int) *LocalClassifier {
	return &LocalClassifier{keywords: keywords, threshold: threshold}
}

// Detect scores the email and reports whether it is job related.
func (c *LocalClassifier) Detect(email *models.Email) (bool, int) {
	if c.isExcluded(email) {
		return false, 0
	}

	score := 0

	// Sender domain: ATS platforms are a strong signal, job boards are
	// likely newsletters
	domain := textutil.ExtractEmailDomain(email.SenderEmail)
	for _, ats := range c.keywords.ATSDomains {
		if strings.Contains(domain, ats) {
			score += 5
			break
		}
	}
	for _, board := range c.keywords.JobBoardDomains {
		if strings.Contains(domain, board) {
			score -= 3
			break
		}
	}

	if c.keywords.recruitingRegex.MatchString(email.SenderEmail) {
		score += 3
	}

	subjectLower := strings.ToLower(email.Subject)
	switch {
	case textutil.ContainsAnyKeyword(subjectLower, c.keywords.HighConfidence):
		score += 3
	case textutil.ContainsAnyKeyword(subjectLower, c.keywords.MediumConfidence):
		score += 2
	}

	bodyLower := strings.ToLower(email.Body)
	switch {
	case textutil.ContainsAnyKeyword(bodyLower, c.keywords.HighConfidence):
		score += 3
	case textutil.ContainsAnyKeyword(bodyLower, c.keywords.MediumConfidence):
		score += 2
	case textutil.ContainsAnyKeyword(bodyLower, c.keywords.LowConfidence):
		score += 1
	}

	return score >= c.threshold, score
}

func (c *LocalClassifier) isExcluded(email *models.Email) bool {
	text := strings.ToLower(email.Subject + " " + email.Body)
	return textutil.ContainsAnyKeyword(text, c.keywords.ExclusionPatterns)
}

// ClassifyStatus maps the email text to an application status. Rejection
// is checked before the other kinds because rejection mails often quote
// interview or offer language.
func (c *LocalClassifier) ClassifyStatus(email *models.Email) (string, models.Status) {
	text := strings.ToLower(email.Subject + " " + email.Body)

	switch {
	case textutil.ContainsAnyKeyword(text, c.keywords.StatusKeywords[kwRejected]):
		return "rejection", models.StatusRejected
	case textutil.ContainsAnyKeyword(text, c.keywords.StatusKeywords[kwOffer]):
		return "offer", models.StatusOfferReceived
	case textutil.ContainsAnyKeyword(text, c.keywords.StatusKeywords[kwInterviewScheduled]):
		return "interview", models.StatusInterviewScheduled
	case textutil.ContainsAnyKeyword(text, c.keywords.StatusKeywords[kwAssessment]):
		return "assessment", models.StatusAssessmentSent
	case textutil.ContainsAnyKeyword(text, c.keywords.StatusKeywords[kwApplicationReceived]):
		return "application_received", models.StatusApplicationReceived
	default:
		return "application", models.StatusApplied
	}
}

var (
	companyAtRegex     = regexp.MustCompile(`(?:at|@)\s+([A-Z][A-Za-z0-9\s&]+)`)
	companyDashRegex   = regexp.MustCompile(`^([A-Z][A-Za-z0-9\s&]+?)\s*[-:]`)
	companyThanksRegex = regexp.MustCompile(`(?i)thank you for (?:applying|your (?:application|interest)) (?:to|at|in)\s+([A-Z][A-Za-z0-9\s&]+)`)
	positionForRegex   = regexp.MustCompile(`(?i)(?:position|role|title)\s*(?:of|:)?\s+([A-Za-z][A-Za-z0-9\s/()-]{2,60})`)
	positionAsRegex    = regexp.MustCompile(`(?i)(?:for the|as an?|als)\s+([A-Z][A-Za-z0-9\s/()-]{2,60}?)\s+(?:position|role|stelle)`)
)

// ExtractCompany extracts a company name from subject, sender domain,
// sender name or body, in that order. Returns the sentinel when nothing
// is found.
func (c *LocalClassifier) ExtractCompany(email *models.Email) string {
	if company := extractCompanyFromSubject(email.Subject); company != "" {
		return company
	}

	domain := textutil.ExtractEmailDomain(email.SenderEmail)
	if name := textutil.ExtractDomainCompanyName(domain); len(name) > 2 && !c.isGenericDomain(domain) {
		return capitalize(name)
	}

	if email.Sender != "" && !strings.Contains(email.Sender, "@") {
		parts := strings.Fields(email.Sender)
		if len(parts) > 0 && len(parts[0]) > 2 {
			return parts[0]
		}
	}

	if match := companyThanksRegex.FindStringSubmatch(email.Body); match != nil {
		return firstWords(strings.TrimSpace(match[1]), 3)
	}

	return models.UnknownCompany
}

func (c *LocalClassifier) isGenericDomain(domain string) bool {
	for _, d := range append(c.keywords.ATSDomains, c.keywords.JobBoardDomains...) {
		if strings.Contains(domain, d) {
			return true
		}
	}
	return strings.Contains(domain, "gmail.") || strings.Contains(domain, "outlook.")
}

func extractCompanyFromSubject(subject string) string {
	if match := companyAtRegex.FindStringSubmatch(subject); match != nil {
		return firstWords(strings.TrimSpace(match[1]), 3)
	}
	if match := companyDashRegex.FindStringSubmatch(subject); match != nil {
		return strings.TrimSpace(match[1])
	}
	return ""
}

// ExtractPosition extracts a position title from subject or body. Returns
// the sentinel when nothing is found.
func (c *LocalClassifier) ExtractPosition(email *models.Email) string {
	for _, text := range []string{email.Subject, email.Body} {
		if match := positionAsRegex.FindStringSubmatch(text); match != nil {
			return strings.TrimSpace(match[1])
		}
		if match := positionForRegex.FindStringSubmatch(text); match != nil {
			return firstWords(strings.TrimSpace(match[1]), 5)
		}
	}
	return models.UnknownPosition
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// Classify runs the full local path on one email, populating its
// classification fields.
func (c *LocalClassifier) Classify(email *models.Email) {
	isJob, score := c.Detect(email)
	email.IsJobRelated = isJob
	email.DetectionScore = score
	if !isJob {
		return
	}

	email.Company = c.ExtractCompany(email)
	email.Position = c.ExtractPosition(email)
	email.EmailType, email.Status = c.ClassifyStatus(email)
}
