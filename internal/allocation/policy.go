package allocation

import "fmt"

// Policy bounds what the combination search may return.
type Policy struct {
	MaxTables          int `json:"max_tables" mapstructure:"max_tables"`
	SmallPartySize     int `json:"small_party_size" mapstructure:"small_party_size"`
	SmallPartyMaxWaste int `json:"small_party_max_waste" mapstructure:"small_party_max_waste"`
	LargePartyMaxWaste int `json:"large_party_max_waste" mapstructure:"large_party_max_waste"`
}

// DefaultPolicy returns the house rules: up to 5 tables, 2 spare seats for
// parties of 8 or fewer and 4 for larger ones.
func DefaultPolicy() Policy {
	return Policy{
		MaxTables:          5,
		SmallPartySize:     8,
		SmallPartyMaxWaste: 2,
		LargePartyMaxWaste: 4,
	}
}

// MaxWaste returns the number of empty seats tolerated for a party.
func (p Policy) MaxWaste(people int) int {
	if people <= p.SmallPartySize {
		return p.SmallPartyMaxWaste
	}
	return p.LargePartyMaxWaste
}

// Validate checks the policy for consistency.
func (p *Policy) Validate() error {
	if p.MaxTables < 1 {
		return fmt.Errorf("max_tables must be at least 1, got %d", p.MaxTables)
	}
	if p.SmallPartySize < 0 {
		return fmt.Errorf("small_party_size must be non-negative, got %d", p.SmallPartySize)
	}
	if p.SmallPartyMaxWaste < 0 || p.LargePartyMaxWaste < 0 {
		return fmt.Errorf("max waste must be non-negative, got %d/%d", p.SmallPartyMaxWaste, p.LargePartyMaxWaste)
	}
	return nil
}
