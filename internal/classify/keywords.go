package classify

import (
	"log"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keywords holds the rule tables used by the local classification path.
// The defaults cover English and German; a YAML file can override any
// table.
type Keywords struct {
	ATSDomains          []string            `yaml:"ats_domains"`
	RecruitingPatterns  []string            `yaml:"recruiting_patterns"`
	StatusKeywords      map[string][]string `yaml:"status_keywords"`
	HighConfidence      []string            `yaml:"high_confidence"`
	MediumConfidence    []string            `yaml:"medium_confidence"`
	LowConfidence       []string            `yaml:"low_confidence"`
	ExclusionPatterns   []string            `yaml:"exclusion_patterns"`
	JobBoardDomains     []string            `yaml:"job_board_domains"`
	PositionIndicators  []string            `yaml:"position_indicators"`

	recruitingRegex *regexp.Regexp
}

// Status keyword table names.
const (
	kwApplicationReceived = "application_received"
	kwInterviewScheduled  = "interview_scheduled"
	kwRejected            = "rejected"
	kwOffer               = "offer"
	kwAssessment          = "assessment"
)

// DefaultKeywords returns the built-in rule tables.
func DefaultKeywords() *Keywords {
	k := &Keywords{
		ATSDomains: []string{
			"lever.co", "greenhouse.io", "workday.com", "icims.com",
			"smartrecruiters.com", "myworkdayjobs.com", "ultipro.com",
			"taleo.net", "jobvite.com", "applytojob.com", "breezy.hr",
			"recruitee.com",
			"bewerbung-online.com", "stellenanzeigen.de", "personio.de",
		},
		RecruitingPatterns: []string{
			`recruiting@`, `talent@`, `careers@`, `jobs@`, `hiring@`, `hr@`,
			`noreply@.*jobs`, `noreply@.*careers`,
			`bewerbung@`, `karriere@`, `personal@`,
		},
		StatusKeywords: map[string][]string{
			kwApplicationReceived: {
				"received your application", "application submitted",
				"thank you for applying", "application confirmed",
				"successfully applied", "we have received your application",
				"bewerbung eingegangen", "bewerbung erhalten",
				"vielen dank für ihre bewerbung",
				"haben ihre bewerbung erhalten", "erfolgreich beworben",
			},
			kwInterviewScheduled: {
				"schedule an interview", "interview invitation",
				"phone screen", "interview opportunity", "schedule a call",
				"invite you to interview",
				"gespräch vereinbaren", "einladung zum gespräch",
				"telefoninterview", "vorstellungsgespräch",
				"kennenlerngespräch",
			},
			kwRejected: {
				"not moving forward", "other candidates", "regret to inform",
				"not selected", "unfortunately",
				"will not be moving forward", "chosen to pursue",
				"other applicants",
				"absage", "können wir ihnen leider nicht zusagen",
				"andere kandidaten", "nicht berücksichtigen",
				"leider müssen wir", "haben uns für andere",
				"bedauerlicherweise",
			},
			kwOffer: {
				"offer letter", "excited to offer", "compensation package",
				"extend an offer", "pleased to offer", "offer of employment",
				"vertragsangebot", "arbeitsvertrag",
				"angebot zu unterbreiten",
			},
			kwAssessment: {
				"coding challenge", "take-home", "assessment",
				"technical test", "assignment", "complete the following",
				"programmieraufgabe", "testaufgabe", "technische aufgabe",
			},
		},
		HighConfidence: []string{
			"job application", "position you applied", "your application for",
			"application status", "application for the",
			"ihre bewerbung", "bewerbungsprozess", "bewerbungsstatus",
			"bewerbung für",
		},
		MediumConfidence: []string{
			"interview", "candidate", "recruiting team", "hiring manager",
			"applicant", "recruitment",
			"kandidat", "recruiting", "personalabteilung",
			"einstellungsprozess", "bewerber",
		},
		LowConfidence: []string{
			"opportunity", "role", "resume", "cv", "position",
			"stelle", "lebenslauf", "gelegenheit",
		},
		ExclusionPatterns: []string{
			"job alert", "recommended jobs", "jobs you might like",
			"newsletter", "digest", "career tips", "unsubscribe",
			"job recommendations", "new jobs matching",
			"jobalarm", "abmelden", "job-empfehlungen",
		},
		JobBoardDomains: []string{
			"linkedin.com", "indeed.com", "glassdoor.com", "monster.com",
			"stepstone.de", "xing.com",
		},
		PositionIndicators: []string{
			"position of", "role of", "position:", "role:", "title:",
			"for the", "as a", "as an",
			"stelle als", "position als", "für die stelle",
		},
	}
	k.compile()
	return k
}

// LoadKeywords returns the defaults overridden by a YAML file when path is
// set. A missing or malformed file falls back to the defaults.
func LoadKeywords(path string) *Keywords {
	k := DefaultKeywords()
	if path == "" {
		return k
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[Classify] keywords file %s not readable, using defaults: %v", path, err)
		return k
	}
	if err := yaml.Unmarshal(data, k); err != nil {
		log.Printf("[Classify] keywords file %s malformed, using defaults: %v", path, err)
		return DefaultKeywords()
	}

	k.compile()
	return k
}

func (k *Keywords) compile() {
	k.recruitingRegex = regexp.MustCompile("(?i)" + strings.Join(k.RecruitingPatterns, "|"))
}
