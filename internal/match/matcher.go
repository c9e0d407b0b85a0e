// Package match implements the multi-strategy reconciliation matcher that
// decides whether an incoming classified email belongs to an existing
// application or starts a new one.
package match

import (
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/tyagiprnv/Job-Tracker/internal/config"
	"github.com/tyagiprnv/Job-Tracker/internal/models"
	"github.com/tyagiprnv/Job-Tracker/internal/textutil"
)

// Confidence levels reported by the exact-match strategies. Confidence is
// informational, not comparative across strategies.
const (
	ConfidenceThreadID      = 100
	ConfidenceExact         = 95
	ConfidenceRecentCompany = 70
)

// ThreadRedirector resolves thread ids of merged-away applications to the
// thread id set of the application they were folded into.
type ThreadRedirector interface {
	Redirect(threadID string) string
}

// Matcher finds the existing application an email belongs to. Strategies
// are applied in strict priority order, returning on the first hit.
type Matcher struct {
	cfg        *config.Config
	redirector ThreadRedirector
	lev        *metrics.Levenshtein
}

// NewMatcher creates a Matcher. redirector may be nil when no merge
// tracking is available (e.g. dry runs).
func NewMatcher(cfg *config.Config, redirector ThreadRedirector) *Matcher {
	return &Matcher{
		cfg:        cfg,
		redirector: redirector,
		lev:        metrics.NewLevenshtein(),
	}
}

// FindMatch returns the single best existing application for the email, or
// nil when the email should start a new application.
func (m *Matcher) FindMatch(email *models.Email, applications []*models.Application) (*models.Application, int) {
	if len(applications) == 0 {
		return nil, 0
	}

	if app, conf := m.matchByThreadID(email, applications); app != nil {
		return app, conf
	}
	if app, conf := m.matchExact(email, applications); app != nil {
		return app, conf
	}
	if app, conf := m.matchFuzzy(email, applications); app != nil {
		return app, conf
	}
	if app, conf := m.matchRecentCompany(email, applications); app != nil {
		return app, conf
	}

	return nil, 0
}

// matchByThreadID matches on conversation identity. If the email's thread
// was previously folded into another application, the lookup is redirected
// to the merged-into thread id set first.
func (m *Matcher) matchByThreadID(email *models.Email, applications []*models.Application) (*models.Application, int) {
	if email.ThreadID == "" {
		return nil, 0
	}

	lookupIDs := []string{email.ThreadID}
	if m.redirector != nil {
		if redirected := m.redirector.Redirect(email.ThreadID); redirected != "" {
			for _, id := range strings.Split(redirected, ",") {
				if id = strings.TrimSpace(id); id != "" {
					lookupIDs = append(lookupIDs, id)
				}
			}
		}
	}

	for _, app := range applications {
		for _, appID := range app.ThreadIDs() {
			for _, id := range lookupIDs {
				if appID == id {
					return app, ConfidenceThreadID
				}
			}
		}
	}

	return nil, 0
}

// matchExact matches on equality of normalized company and position.
// Skipped when either side's position is a sentinel.
func (m *Matcher) matchExact(email *models.Email, applications []*models.Application) (*models.Application, int) {
	if models.IsUnknownCompany(email.Company) || models.IsUnknownPosition(email.Position) {
		return nil, 0
	}

	emailCompany := textutil.NormalizeCompanyName(email.Company)
	emailPosition := strings.ToLower(strings.TrimSpace(email.Position))

	for _, app := range applications {
		if models.IsUnknownPosition(app.Position) {
			continue
		}

		appCompany := textutil.NormalizeCompanyName(app.Company)
		appPosition := strings.ToLower(strings.TrimSpace(app.Position))

		if emailCompany == appCompany && emailPosition == appPosition {
			return app, ConfidenceExact
		}
	}

	return nil, 0
}

// matchFuzzy matches on weighted string similarity. When either side's
// position is unknown the comparison degrades to company-only with a
// stricter gate.
func (m *Matcher) matchFuzzy(email *models.Email, applications []*models.Application) (*models.Application, int) {
	if models.IsUnknownCompany(email.Company) {
		return nil, 0
	}

	emailCompany := textutil.NormalizeCompanyName(email.Company)
	emailPosition := strings.ToLower(strings.TrimSpace(email.Position))
	emailPositionUnknown := models.IsUnknownPosition(email.Position)

	var best *models.Application
	bestScore := 0.0
	bestCompanyOnly := false

	for _, app := range applications {
		appCompany := textutil.NormalizeCompanyName(app.Company)
		companyScore := m.ratio(emailCompany, appCompany)

		if emailPositionUnknown || models.IsUnknownPosition(app.Position) {
			// Company-only comparison with a stricter gate
			if companyScore >= float64(m.cfg.CompanyOnlyMin) && companyScore > bestScore {
				best = app
				bestScore = companyScore
				bestCompanyOnly = true
			}
			continue
		}

		appPosition := strings.ToLower(strings.TrimSpace(app.Position))
		positionScore := m.ratio(emailPosition, appPosition)

		combined := companyScore*0.6 + positionScore*0.4

		if companyScore >= float64(m.cfg.CompanySimilarity) &&
			positionScore >= float64(m.cfg.PositionSimilarity) &&
			combined > bestScore {
			best = app
			bestScore = combined
			bestCompanyOnly = false
		}
	}

	if best == nil {
		return nil, 0
	}
	if !bestCompanyOnly && bestScore < float64(m.cfg.MatchingThreshold) {
		return nil, 0
	}

	return best, int(bestScore)
}

// matchRecentCompany matches on normalized company alone when exactly one
// application to that company is recent enough. Ambiguity is not guessed.
func (m *Matcher) matchRecentCompany(email *models.Email, applications []*models.Application) (*models.Application, int) {
	if models.IsUnknownCompany(email.Company) {
		return nil, 0
	}

	emailCompany := textutil.NormalizeCompanyName(email.Company)
	recentThreshold := time.Now().AddDate(0, 0, -m.cfg.RecentWindowDays)

	var recent []*models.Application
	for _, app := range applications {
		if textutil.NormalizeCompanyName(app.Company) == emailCompany &&
			!app.ApplicationDate.Before(recentThreshold) {
			recent = append(recent, app)
		}
	}

	if len(recent) != 1 {
		return nil, 0
	}
	app := recent[0]

	if !models.IsUnknownPosition(email.Position) && !models.IsUnknownPosition(app.Position) {
		positionScore := m.ratio(
			strings.ToLower(strings.TrimSpace(email.Position)),
			strings.ToLower(strings.TrimSpace(app.Position)),
		)
		// Positions too different, reject rather than guess
		if positionScore < float64(m.cfg.CompanySimilarity) {
			return nil, 0
		}
	}

	return app, ConfidenceRecentCompany
}

// ratio returns a 0-100 similarity score between two normalized strings.
func (m *Matcher) ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	return strutil.Similarity(a, b, m.lev) * 100
}
