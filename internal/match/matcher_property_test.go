package match

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/tyagiprnv/Job-Tracker/internal/models"
)

// For any application with a known company and position, an email carrying
// exactly the same values matches it, and matching is deterministic.

func TestProperty_IdenticalFieldsAlwaysMatch(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	wordGen := gen.RegexMatch(`[a-z]{3,12}( [a-z]{3,12})?`)

	properties.Property("identical_company_and_position_match", prop.ForAll(
		func(company, position string) bool {
			m := NewMatcher(testConfig(), nil)
			stored := &models.Application{
				Company:         company,
				Position:        position,
				ApplicationDate: time.Now().AddDate(0, 0, -5),
				CurrentStatus:   models.StatusApplied,
			}
			email := &models.Email{Company: company, Position: position}

			got, conf := m.FindMatch(email, []*models.Application{stored})
			return got == stored && conf >= ConfidenceRecentCompany
		},
		wordGen,
		wordGen,
	))

	properties.Property("matching_is_deterministic", prop.ForAll(
		func(company, position string) bool {
			m := NewMatcher(testConfig(), nil)
			apps := []*models.Application{
				{
					Company:         company,
					Position:        position,
					ApplicationDate: time.Now().AddDate(0, 0, -5),
					CurrentStatus:   models.StatusApplied,
				},
				{
					Company:         "unrelated enterprises",
					Position:        "staff cartographer",
					ApplicationDate: time.Now().AddDate(0, 0, -5),
					CurrentStatus:   models.StatusApplied,
				},
			}
			email := &models.Email{Company: company, Position: position}

			first, firstConf := m.FindMatch(email, apps)
			second, secondConf := m.FindMatch(email, apps)
			return first == second && firstConf == secondConf
		},
		wordGen,
		wordGen,
	))

	properties.TestingRun(t)
}
