// Package classify provides email classification: an AI-backed analyzer
// with a persistent result cache and a purely local rule-based fallback.
package classify

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/tyagiprnv/Job-Tracker/internal/config"
	"github.com/tyagiprnv/Job-Tracker/internal/models"
	"github.com/tyagiprnv/Job-Tracker/internal/textutil"
)

// Mode represents the classification mode (AI or local)
type Mode string

const (
	// ModeAI uses the chat-completion backend with local fallback
	ModeAI Mode = "ai"
	// ModeLocal uses only the rule-based local path
	ModeLocal Mode = "local"
)

// Analyzer classifies emails: AI mode calls the completion backend and
// falls back to the local rules when the call or its response fails; local
// mode never leaves the process. Results are cached by message id so
// re-runs do not re-spend API calls.
type Analyzer struct {
	mode      Mode
	client    *Client
	local     *LocalClassifier
	cachePath string
	cache     map[string]AnalysisResult
	batch     []*models.Email
}

// NewAnalyzer creates an Analyzer from configuration. AI mode requires an
// API key; without one the analyzer silently degrades to local mode.
func NewAnalyzer(cfg *config.Config, cachePath string) *Analyzer {
	a := &Analyzer{
		mode:      ModeLocal,
		client:    NewClient(),
		local:     NewLocalClassifier(LoadKeywords(cfg.KeywordsPath), cfg.DetectionThreshold),
		cachePath: cachePath,
		cache:     make(map[string]AnalysisResult),
	}

	if cfg.AIEnabled && cfg.AIAPIKey != "" {
		a.mode = ModeAI
		a.client.ConfigureWithBaseURL(cfg.AIProvider, cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL)
	}

	a.loadCache()
	return a
}

// Mode returns the active classification mode.
func (a *Analyzer) Mode() Mode {
	return a.mode
}

// AnalyzeBatch classifies all emails and returns the job-related subset.
// The full batch is retained so thread context can be built from sibling
// messages.
func (a *Analyzer) AnalyzeBatch(emails []*models.Email) []*models.Email {
	a.batch = emails

	var jobEmails []*models.Email
	for _, email := range emails {
		a.Analyze(email)
		if email.IsJobRelated {
			jobEmails = append(jobEmails, email)
		}
	}
	return jobEmails
}

// Analyze classifies one email in place.
func (a *Analyzer) Analyze(email *models.Email) {
	if a.mode == ModeLocal {
		a.local.Classify(email)
		return
	}

	if cached, ok := a.cache[email.MessageID]; ok {
		applyResult(email, cached)
		return
	}

	result, err := a.client.AnalyzeEmail(
		email.Subject, email.Body, email.SenderEmail, a.threadContext(email))
	if err != nil {
		// Classification failure is non-fatal for the email, the
		// local path takes over
		log.Printf("[Classify] AI analysis failed for %s, using local fallback: %v",
			email.MessageID, err)
		a.local.Classify(email)
		return
	}

	a.cache[email.MessageID] = *result
	a.saveCache()

	applyResult(email, *result)
}

func applyResult(email *models.Email, result AnalysisResult) {
	email.IsJobRelated = result.IsJobRelated
	email.DetectionScore = int(result.Confidence * 100)
	email.Company = result.Company
	if email.Company == "" {
		email.Company = models.UnknownCompany
	}
	email.Position = result.Position
	if email.Position == "" {
		email.Position = models.UnknownPosition
	}
	if result.Status != "" {
		email.Status = models.Status(result.Status)
	} else {
		email.Status = models.StatusApplied
	}
	email.EmailType = mapStatusToType(email.Status)
}

func mapStatusToType(status models.Status) string {
	lower := strings.ToLower(string(status))
	switch {
	case strings.Contains(lower, "reject"):
		return "rejection"
	case strings.Contains(lower, "interview"), strings.Contains(lower, "phone screen"):
		return "interview"
	case strings.Contains(lower, "offer"):
		return "offer"
	case strings.Contains(lower, "assessment"):
		return "assessment"
	case strings.Contains(lower, "received"):
		return "application_received"
	default:
		return "application"
	}
}

// threadContext summarizes earlier messages of the same conversation so
// the backend can classify terse replies ("Sounds good, see you Tuesday").
func (a *Analyzer) threadContext(email *models.Email) string {
	if email.ThreadID == "" {
		return ""
	}

	var siblings []*models.Email
	for _, other := range a.batch {
		if other.MessageID != email.MessageID &&
			other.ThreadID == email.ThreadID &&
			other.Date.Before(email.Date) {
			siblings = append(siblings, other)
		}
	}
	if len(siblings) == 0 {
		return ""
	}

	sort.Slice(siblings, func(i, j int) bool {
		return siblings[i].Date.Before(siblings[j].Date)
	})

	// Most recent 3 earlier messages are context enough
	if len(siblings) > 3 {
		siblings = siblings[len(siblings)-3:]
	}

	var b strings.Builder
	for _, s := range siblings {
		b.WriteString(s.Date.Format(models.DateLayout))
		b.WriteString(" | ")
		b.WriteString(s.Subject)
		b.WriteString(" | ")
		b.WriteString(textutil.TruncateText(s.Body, 200))
		b.WriteString("\n")
	}
	return b.String()
}

func (a *Analyzer) loadCache() {
	if a.cachePath == "" {
		return
	}

	data, err := os.ReadFile(a.cachePath)
	if err != nil {
		return
	}

	if err := json.Unmarshal(data, &a.cache); err != nil {
		log.Printf("[Classify] could not load analysis cache: %v", err)
		a.cache = make(map[string]AnalysisResult)
	}
}

func (a *Analyzer) saveCache() {
	if a.cachePath == "" {
		return
	}

	data, err := json.MarshalIndent(a.cache, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(a.cachePath, data, 0644); err != nil {
		log.Printf("[Classify] could not save analysis cache: %v", err)
	}
}
