package types

// CandidateParse is the structured form of a résumé.
type CandidateParse struct {
	FullName        string            `json:"full_name" validate:"required"`
	Email           *string           `json:"email,omitempty"`
	Phone           *string           `json:"phone,omitempty"`
	Location        *string           `json:"location,omitempty"`
	Links           map[string]string `json:"links"`
	ExperienceYears *float64          `json:"experience_years,omitempty" validate:"omitempty,gte=0"`
	Skills          []string          `json:"skills"`
	Education       []string          `json:"education"`
}

// SchemaID implements Record.
func (*CandidateParse) SchemaID() SchemaID { return SchemaCandidateParse }

func (c *CandidateParse) normalize() {
	if c.Links == nil {
		c.Links = map[string]string{}
	}
	c.Skills = emptyIfNil(c.Skills)
	c.Education = emptyIfNil(c.Education)
}

// FirstName returns the first word of FullName.
func (c *CandidateParse) FirstName() string {
	for i, r := range c.FullName {
		if r == ' ' || r == '\t' {
			return c.FullName[:i]
		}
	}
	return c.FullName
}
