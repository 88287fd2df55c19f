package service

import (
	"errors"
	"fmt"
	"sort"

	"psyscreen/internal/domain"
)

// Catalog is the immutable registry of assessment instruments. It is built
// once at process start and exposes no mutation.
type Catalog struct {
	instruments map[string]domain.Instrument
	order       []string
}

var ErrInstrumentNotFound = errors.New("instrument not found")

// NewCatalog validates and indexes the given instruments.
func NewCatalog(instruments ...domain.Instrument) (*Catalog, error) {
	c := &Catalog{instruments: make(map[string]domain.Instrument, len(instruments))}
	for _, in := range instruments {
		if err := validateInstrument(in); err != nil {
			return nil, fmt.Errorf("instrument %q: %w", in.ID, err)
		}
		if _, dup := c.instruments[in.ID]; dup {
			return nil, fmt.Errorf("instrument %q: duplicate id", in.ID)
		}
		c.instruments[in.ID] = in
		c.order = append(c.order, in.ID)
	}
	return c, nil
}

// Get returns the instrument with the given id.
func (c *Catalog) Get(instrumentID string) (domain.Instrument, error) {
	in, ok := c.instruments[instrumentID]
	if !ok {
		return domain.Instrument{}, ErrInstrumentNotFound
	}
	return in, nil
}

// List returns all instruments in registration order.
func (c *Catalog) List() []domain.Instrument {
	out := make([]domain.Instrument, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.instruments[id])
	}
	return out
}

// TierFor resolves a summed total against the instrument's threshold table:
// ascending inclusive upper bounds, first bound >= total wins.
func TierFor(in domain.Instrument, total int) (string, error) {
	for _, tier := range in.Tiers {
		if total <= tier.MaxScore {
			return tier.Label, nil
		}
	}
	return "", fmt.Errorf("total %d exceeds threshold table of %q", total, in.ID)
}

func validateInstrument(in domain.Instrument) error {
	if in.ID == "" {
		return errors.New("missing id")
	}
	if len(in.Questions) == 0 {
		return errors.New("no questions")
	}
	seen := make(map[string]struct{}, len(in.Questions))
	maxTotal := 0
	for _, q := range in.Questions {
		if q.ID == "" {
			return errors.New("question with empty id")
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q has no options", q.ID)
		}
		maxTotal += maxOptionValue(q)
	}
	for _, id := range in.CriticalQuestionIDs {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("critical question %q is not part of the instrument", id)
		}
	}
	switch in.Mode {
	case domain.ScoringSummed:
		return validateTiers(in, maxTotal)
	case domain.ScoringDimensional:
		return validatePairs(in)
	default:
		return fmt.Errorf("unknown scoring mode %q", in.Mode)
	}
}

func validateTiers(in domain.Instrument, maxTotal int) error {
	if len(in.Tiers) == 0 {
		return errors.New("summed instrument without tiers")
	}
	if !sort.SliceIsSorted(in.Tiers, func(i, j int) bool {
		return in.Tiers[i].MaxScore < in.Tiers[j].MaxScore
	}) {
		return errors.New("tiers must be ascending")
	}
	if top := in.Tiers[len(in.Tiers)-1].MaxScore; top < maxTotal {
		return fmt.Errorf("tiers cover up to %d but max total is %d", top, maxTotal)
	}
	return nil
}

func validatePairs(in domain.Instrument) error {
	if len(in.Pairs) == 0 {
		return errors.New("dimensional instrument without pairs")
	}
	letters := make(map[string]struct{}, len(in.Pairs)*2)
	for _, p := range in.Pairs {
		if p.First == "" || p.Second == "" {
			return errors.New("pair with empty letter")
		}
		if p.Default != p.First && p.Default != p.Second {
			return fmt.Errorf("pair %s/%s: default %q is neither letter", p.First, p.Second, p.Default)
		}
		letters[p.First] = struct{}{}
		letters[p.Second] = struct{}{}
	}
	for _, q := range in.Questions {
		for _, opt := range q.Options {
			if opt.Letter == "" {
				continue
			}
			if _, ok := letters[opt.Letter]; !ok {
				return fmt.Errorf("question %q option %q uses undeclared letter %q", q.ID, opt.Label, opt.Letter)
			}
		}
	}
	return nil
}

func maxOptionValue(q domain.Question) int {
	max := 0
	for _, opt := range q.Options {
		if opt.Value > max {
			max = opt.Value
		}
	}
	return max
}
