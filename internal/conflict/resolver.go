package conflict

import (
	"log"

	"github.com/tyagiprnv/Job-Tracker/internal/models"
	"github.com/tyagiprnv/Job-Tracker/internal/track"
)

// Resolution carries the final field values to use for an update.
type Resolution struct {
	Company      string
	Position     string
	UserModified bool

	// CreateNewEntry signals the caller to bypass the update and create
	// a fresh record with the email's own values.
	CreateNewEntry bool
}

// Resolver orchestrates conflict resolution: remembered decisions are
// auto-applied, upgrades apply silently, and anything else is put to the
// decision provider. Every concrete decision is persisted to the tracker
// so an identical future conflict resolves without asking again.
type Resolver struct {
	interactive bool
	provider    DecisionProvider
	tracker     *track.ResolutionTracker
}

// NewResolver creates a Resolver. In non-interactive mode the provider is
// never consulted and stored values win every real conflict.
func NewResolver(interactive bool, provider DecisionProvider, tracker *track.ResolutionTracker) *Resolver {
	return &Resolver{
		interactive: interactive,
		provider:    provider,
		tracker:     tracker,
	}
}

// Resolve reconciles the detected conflicts into final field values.
func (r *Resolver) Resolve(app *models.Application, email *models.Email, conflicts []FieldConflict) Resolution {
	if len(conflicts) == 0 {
		return Resolution{Company: app.Company, Position: app.Position}
	}

	var upgrades, real []FieldConflict
	for _, c := range conflicts {
		if c.IsUpgrade {
			upgrades = append(upgrades, c)
		} else {
			real = append(real, c)
		}
	}

	if !r.interactive {
		res := r.applyUpgrades(app, upgrades)
		if len(real) > 0 {
			log.Printf("[Conflict] non-interactive: preserving stored values for %s - %s",
				app.Company, app.Position)
		}
		return res
	}

	if len(real) == 0 {
		return r.applyUpgrades(app, upgrades)
	}

	// Auto-apply when the memo covers every real conflict
	if res, ok := r.resolveFromMemo(app, real, upgrades); ok {
		return res
	}

	decision := r.provider.Decide(app, email, real)

	switch decision.Choice {
	case ChoiceKeepStored:
		for _, c := range real {
			r.tracker.Save(c.FieldName, c.StoredValue, c.IncomingValue,
				c.StoredValue, track.ResolutionKeepStored)
		}
		res := r.applyUpgrades(app, upgrades)
		res.UserModified = true
		return res

	case ChoiceUseIncoming:
		for _, c := range real {
			r.tracker.Save(c.FieldName, c.StoredValue, c.IncomingValue,
				c.IncomingValue, track.ResolutionUseIncoming)
		}
		res := Resolution{
			Company:      email.CompanyOrUnknown(),
			Position:     email.PositionOrUnknown(),
			UserModified: true,
		}
		applyDecidedFields(&res, upgradesNotCovering(upgrades, real))
		return res

	case ChoicePerField:
		res := r.applyUpgrades(app, upgrades)
		res.UserModified = true
		for _, c := range real {
			d, ok := decision.PerField[c.FieldName]
			if !ok {
				continue
			}
			r.tracker.Save(c.FieldName, c.StoredValue, c.IncomingValue, d.ChosenValue, d.Kind)
			setField(&res, c.FieldName, d.ChosenValue)
		}
		return res

	case ChoiceNewEntry:
		log.Printf("[Conflict] creating separate entry for: %s - %s",
			email.CompanyOrUnknown(), email.PositionOrUnknown())
		return Resolution{
			Company:        email.CompanyOrUnknown(),
			Position:       email.PositionOrUnknown(),
			UserModified:   true,
			CreateNewEntry: true,
		}

	default: // abstain
		return r.applyUpgrades(app, upgrades)
	}
}

// resolveFromMemo applies remembered decisions when every real conflict
// has one.
func (r *Resolver) resolveFromMemo(app *models.Application, real, upgrades []FieldConflict) (Resolution, bool) {
	saved := make(map[string]string, len(real))
	for _, c := range real {
		res := r.tracker.Find(c.FieldName, c.StoredValue, c.IncomingValue)
		if res == nil {
			return Resolution{}, false
		}
		saved[c.FieldName] = res.ChosenValue
	}

	res := r.applyUpgrades(app, upgrades)
	res.UserModified = true
	for field, value := range saved {
		log.Printf("[Conflict] applied saved resolution: %s -> '%s'", field, value)
		setField(&res, field, value)
	}
	return res, true
}

// applyUpgrades replaces sentinel values by the incoming real values.
func (r *Resolver) applyUpgrades(app *models.Application, upgrades []FieldConflict) Resolution {
	res := Resolution{Company: app.Company, Position: app.Position}
	for _, u := range upgrades {
		log.Printf("[Conflict] auto-upgrade: %s '%s' -> '%s'",
			u.FieldName, u.StoredValue, u.IncomingValue)
		setField(&res, u.FieldName, u.IncomingValue)
	}
	return res
}

// upgradesNotCovering filters out upgrades whose field already has a real
// conflict decision.
func upgradesNotCovering(upgrades, real []FieldConflict) []FieldConflict {
	covered := make(map[string]bool, len(real))
	for _, c := range real {
		covered[c.FieldName] = true
	}

	var out []FieldConflict
	for _, u := range upgrades {
		if !covered[u.FieldName] {
			out = append(out, u)
		}
	}
	return out
}

func applyDecidedFields(res *Resolution, upgrades []FieldConflict) {
	for _, u := range upgrades {
		setField(res, u.FieldName, u.IncomingValue)
	}
}

func setField(res *Resolution, field, value string) {
	switch field {
	case FieldCompany:
		res.Company = value
	case FieldPosition:
		res.Position = value
	}
}
