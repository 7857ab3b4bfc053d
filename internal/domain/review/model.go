package review

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GriffinCanCode/zvenigorodok/internal/shared/id"
	"github.com/bytedance/sonic"
)

var (
	ErrUnknownTarget = errors.New("unknown review target")
	ErrInvalidReview = errors.New("invalid review")
)

// Target is the service a review is written about.
type Target string

const (
	Tyres      Target = "Tyres"
	Cleaning   Target = "Cleaning"
	HomeMaster Target = "HomeMaster"
)

// Targets lists every known target in display order.
var Targets = []Target{Tyres, Cleaning, HomeMaster}

// ParseTarget accepts the canonical names plus the upper-case aliases the
// booking forms still send.
func ParseTarget(s string) (Target, error) {
	switch s {
	case string(Tyres), "TYRES":
		return Tyres, nil
	case string(Cleaning), "CLEANING":
		return Cleaning, nil
	case string(HomeMaster):
		return HomeMaster, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

func (t Target) String() string {
	return string(t)
}

// MarshalJSON always writes the canonical name.
func (t Target) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(string(t))
}

// UnmarshalJSON accepts canonical names and aliases.
func (t *Target) UnmarshalJSON(data []byte) error {
	var s string
	if err := sonic.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: target must be a string", ErrUnknownTarget)
	}
	parsed, err := ParseTarget(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MaxTextLength bounds the review text in runes.
const MaxTextLength = 4000

// Review is a customer review as stored and served by the reviews API.
type Review struct {
	ID     id.ReviewID `json:"id,omitempty"`
	Text   string      `json:"text"`
	User   string      `json:"user"`
	Date   time.Time   `json:"date"`
	Target Target      `json:"target"`
}

// Validate checks the fields a stored review must carry.
func (r Review) Validate() error {
	switch {
	case strings.TrimSpace(r.Text) == "":
		return fmt.Errorf("%w: text is required", ErrInvalidReview)
	case len([]rune(r.Text)) > MaxTextLength:
		return fmt.Errorf("%w: text exceeds %d characters", ErrInvalidReview, MaxTextLength)
	case strings.TrimSpace(r.User) == "":
		return fmt.Errorf("%w: user is required", ErrInvalidReview)
	}
	if _, err := ParseTarget(string(r.Target)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReview, err)
	}
	return nil
}

// Filter selects reviews in List. A zero Filter selects everything.
type Filter struct {
	Target Target
}

// Matches reports whether r passes the filter.
func (f Filter) Matches(r Review) bool {
	return f.Target == "" || f.Target == r.Target
}
