package flowdoc

import (
	"regexp"
	"strconv"
	"strings"

	"flowbridge/internal/api"
	"flowbridge/pkg/logging"

	"github.com/google/uuid"
)

// DefaultCron is the schedule used when a request names no recognizable
// schedule phrase.
const DefaultCron = "0 * * * *"

// schedulePhrase maps a recognized phrase to its cron expression.
// Matching is ordered and case-insensitive; the first phrase contained in
// the prompt wins.
type schedulePhrase struct {
	phrase string
	cron   string
}

var scheduleTable = []schedulePhrase{
	{"every 15 minutes", "*/15 * * * *"},
	{"every 6 hours", "0 */6 * * *"},
	{"weekdays at 9am", "0 9 * * 1-5"},
	{"twice a day", "0 0,12 * * *"},
	{"every hour", "0 * * * *"},
	{"hourly", "0 * * * *"},
	{"daily", "0 0 * * *"},
	{"every day", "0 0 * * *"},
	{"weekly", "0 0 * * 0"},
	{"monthly", "0 0 1 * *"},
}

// priorityTable maps priority keywords to the platform's 1-5 scale.
// Longer keywords come first so "highest" is not matched as "high".
var priorityTable = []struct {
	keyword  string
	priority int
}{
	{"highest", api.PriorityHighest},
	{"lowest", api.PriorityLowest},
	{"high", 2},
	{"low", 4},
}

// entityNouns are the data-entity words recognized in route phrases, used
// when deriving a flow name from source/destination hints.
var entityNouns = []string{
	"orders", "order", "customers", "customer", "products",
	"inventory", "shipments", "invoices", "payments",
}

var (
	quotedNameRe   = regexp.MustCompile(`(?i)\b(?:called|named)\s+"([^"]+)"`)
	unquotedNameRe = regexp.MustCompile(`(?i)\b(?:called|named)\s+([^,.;"]+)`)
	routeRe        = regexp.MustCompile(`(?i)\b(?:for|from)\s+([\w][\w&.-]*(?:\s[\w&.-]+)?)\s+to\s+([\w][\w&.-]*(?:\s[\w&.-]+)?)\b`)
	priorityNumRe  = regexp.MustCompile(`(?i)\bpriority\s*(?:of\s*|:|=)?\s*([1-5])\b`)
)

// Parser extracts structured slots from free-text flow requests.
// Parsing is lossy and best-effort: unresolved ambiguity degrades to the
// documented defaults rather than failing, so a slot set is always produced.
type Parser struct{}

// NewParser creates a prompt parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts a slot set from a free-text description.
//
// The output is_enabled is always false: enablement is never inferred from
// text, matching the platform's safety default that drafts are reviewed
// before activation.
func (p *Parser) Parse(prompt string) api.PromptSlots {
	slots := api.PromptSlots{
		ScheduleCron: p.parseSchedule(prompt),
		Priority:     p.parsePriority(prompt),
		IsEnabled:    false,
	}

	slots.SourceHint, slots.DestinationHint = p.parseRoute(prompt)
	slots.Entity = p.parseEntity(prompt)
	if slots.Entity == "" && slots.SourceHint != "" {
		slots.Entity = "orders"
	}
	slots.FlowName = p.parseName(prompt, slots)

	logging.Debug("PromptParser", "parsed slots: name=%q cron=%q priority=%d source=%q destination=%q",
		slots.FlowName, slots.ScheduleCron, slots.Priority, slots.SourceHint, slots.DestinationHint)

	return slots
}

// parseName resolves the flow name: an explicit name phrase wins, then a
// name derived from route hints, then a generic placeholder with a short
// suffix to avoid collisions.
func (p *Parser) parseName(prompt string, slots api.PromptSlots) string {
	if m := quotedNameRe.FindStringSubmatch(prompt); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := unquotedNameRe.FindStringSubmatch(prompt); m != nil {
		return trimNamePhrase(m[1])
	}

	if slots.SourceHint != "" && slots.DestinationHint != "" {
		name := slots.SourceHint + " to " + slots.DestinationHint
		if slots.Entity != "" {
			name += " " + slots.Entity
		}
		return name
	}

	return GenericFlowName()
}

// trimNamePhrase cuts an unquoted name capture at the first connective
// word, so "called order sync that runs hourly" yields "order sync".
func trimNamePhrase(raw string) string {
	name := strings.TrimSpace(raw)
	for _, sep := range []string{" that ", " which ", " for ", " from ", " running ", " run ", " every ", " with "} {
		if idx := strings.Index(strings.ToLower(name), sep); idx > 0 {
			name = name[:idx]
		}
	}
	return strings.TrimSpace(name)
}

// GenericFlowName returns a placeholder flow name with a short random
// suffix so repeated unnamed requests do not collide.
func GenericFlowName() string {
	return "Untitled flow " + uuid.NewString()[:8]
}

func (p *Parser) parseSchedule(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, entry := range scheduleTable {
		if strings.Contains(lower, entry.phrase) {
			return entry.cron
		}
	}
	return DefaultCron
}

func (p *Parser) parsePriority(prompt string) int {
	if m := priorityNumRe.FindStringSubmatch(prompt); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= api.PriorityHighest && n <= api.PriorityLowest {
			return n
		}
	}

	lower := strings.ToLower(prompt)
	for _, entry := range priorityTable {
		if strings.Contains(lower, entry.keyword+" priority") ||
			strings.Contains(lower, "priority "+entry.keyword) {
			return entry.priority
		}
	}

	return api.PriorityDefault
}

// parseRoute recognizes "for X to Y" / "from X to Y" phrases and returns
// the source and destination hints with the prompt's own casing preserved.
func (p *Parser) parseRoute(prompt string) (source, destination string) {
	m := routeRe.FindStringSubmatch(prompt)
	if m == nil {
		return "", ""
	}

	source = strings.TrimSpace(m[1])
	destination = strings.TrimSpace(m[2])

	// The lazy two-word capture can swallow a trailing entity noun or
	// schedule word into the destination; strip recognized tails.
	destination = trimRouteTail(destination)
	return source, destination
}

// trimRouteTail drops a trailing entity or schedule word captured into a
// destination hint ("NetSuite orders" keeps only "NetSuite").
func trimRouteTail(hint string) string {
	words := strings.Fields(hint)
	if len(words) < 2 {
		return hint
	}
	last := strings.ToLower(words[len(words)-1])
	for _, noun := range entityNouns {
		if last == noun {
			return strings.Join(words[:len(words)-1], " ")
		}
	}
	if last == "every" || last == "run" {
		return strings.Join(words[:len(words)-1], " ")
	}
	return hint
}

func (p *Parser) parseEntity(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, noun := range entityNouns {
		if !strings.Contains(lower, noun) {
			continue
		}
		// Normalize to a plural noun; "order"/"orders" both become "orders".
		if strings.HasPrefix(noun, "order") {
			return "orders"
		}
		if noun == "inventory" || strings.HasSuffix(noun, "s") {
			return noun
		}
		return noun + "s"
	}
	return ""
}
