package conflict

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/tyagiprnv/Job-Tracker/internal/models"
	"github.com/tyagiprnv/Job-Tracker/internal/textutil"
	"github.com/tyagiprnv/Job-Tracker/internal/track"
)

// Choice is the outer decision taken for a set of real conflicts.
type Choice int

const (
	// ChoiceAbstain makes no change and records nothing.
	ChoiceAbstain Choice = iota
	// ChoiceKeepStored keeps the stored values for every conflict.
	ChoiceKeepStored
	// ChoiceUseIncoming uses the incoming values for every conflict.
	ChoiceUseIncoming
	// ChoicePerField carries an independent decision per field.
	ChoicePerField
	// ChoiceNewEntry bypasses the update and creates a fresh record.
	ChoiceNewEntry
)

// FieldDecision is one per-field outcome under ChoicePerField.
type FieldDecision struct {
	ChosenValue string
	Kind        string // track.ResolutionKeepStored, -UseIncoming or -Manual
}

// Decision is the outcome obtained from a DecisionProvider.
type Decision struct {
	Choice   Choice
	PerField map[string]FieldDecision
}

// DecisionProvider solicits a decision for real conflicts. Implementations
// may ask a human or apply an automated policy; the resolver handles
// persistence of whatever comes back.
type DecisionProvider interface {
	Decide(app *models.Application, email *models.Email, conflicts []FieldConflict) Decision
}

// TerminalPrompter asks the user on the terminal, mirroring the stored and
// incoming values side by side. When stdin is not a terminal it abstains.
type TerminalPrompter struct {
	in  *bufio.Reader
	out *os.File
}

// NewTerminalPrompter creates a prompter reading from stdin.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

// Decide presents all real conflicts together and obtains one decision.
func (p *TerminalPrompter) Decide(app *models.Application, email *models.Email, conflicts []FieldConflict) Decision {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return Decision{Choice: ChoiceAbstain}
	}

	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Conflict detected: a new email has different information than the store")
	fmt.Fprintf(p.out, "for: %s - %s\n\n", app.Company, app.Position)

	fmt.Fprintf(p.out, "  %-12s %-30s %s\n", "Field", "Stored (current)", "Email (new)")
	for _, c := range conflicts {
		fmt.Fprintf(p.out, "  %-12s %-30s %s\n", c.FieldName, c.StoredValue, c.IncomingValue)
	}

	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "Email: %s | %s | %s\n\n",
		email.Date.Format(models.DateLayout),
		textutil.TruncateText(email.Subject, 60),
		email.SenderEmail)

	fmt.Fprintln(p.out, "  [1] Keep stored values")
	fmt.Fprintln(p.out, "  [2] Use email values")
	fmt.Fprintln(p.out, "  [3] Choose individually for each field")
	fmt.Fprintln(p.out, "  [4] Create separate entry (treat as new application)")
	fmt.Fprintln(p.out, "  [q] Skip this email (no changes)")

	for {
		choice := p.ask("Choice [1/2/3/4/q] (1)")
		if choice == "" {
			choice = "1"
		}

		switch choice {
		case "q":
			return Decision{Choice: ChoiceAbstain}
		case "1":
			return Decision{Choice: ChoiceKeepStored}
		case "2":
			return Decision{Choice: ChoiceUseIncoming}
		case "3":
			return Decision{
				Choice:   ChoicePerField,
				PerField: p.promptFields(conflicts),
			}
		case "4":
			return Decision{Choice: ChoiceNewEntry}
		}
		fmt.Fprintln(p.out, "Invalid input, please try again.")
	}
}

// promptFields asks for each conflicting field individually.
func (p *TerminalPrompter) promptFields(conflicts []FieldConflict) map[string]FieldDecision {
	decisions := make(map[string]FieldDecision)

	for _, c := range conflicts {
		fmt.Fprintf(p.out, "\n%s conflict:\n", c.FieldName)
		fmt.Fprintf(p.out, "  Stored: %s\n", c.StoredValue)
		fmt.Fprintf(p.out, "  Email:  %s\n", c.IncomingValue)

		switch p.ask("Which value? [s/e/m] (s)") {
		case "e":
			decisions[c.FieldName] = FieldDecision{
				ChosenValue: c.IncomingValue,
				Kind:        track.ResolutionUseIncoming,
			}
		case "m":
			manual := strings.TrimSpace(p.ask("Enter " + c.FieldName + " manually"))
			if manual != "" {
				decisions[c.FieldName] = FieldDecision{
					ChosenValue: manual,
					Kind:        track.ResolutionManual,
				}
				continue
			}
			fmt.Fprintln(p.out, "Empty input, keeping stored value")
			fallthrough
		default:
			decisions[c.FieldName] = FieldDecision{
				ChosenValue: c.StoredValue,
				Kind:        track.ResolutionKeepStored,
			}
		}
	}

	return decisions
}

func (p *TerminalPrompter) ask(prompt string) string {
	fmt.Fprintf(p.out, "%s: ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return "q"
	}
	return strings.ToLower(strings.TrimSpace(line))
}

// StaticProvider returns a fixed decision; used by automated policies and
// tests.
type StaticProvider struct {
	Decision Decision
}

// Decide returns the fixed decision.
func (s *StaticProvider) Decide(*models.Application, *models.Email, []FieldConflict) Decision {
	return s.Decision
}
