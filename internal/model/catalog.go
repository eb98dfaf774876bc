package model

// Service is one category of the service catalog with its ordered sub-services.
type Service struct {
	Name string   `json:"name" mapstructure:"name"`
	Subs []string `json:"subs" mapstructure:"subs"`
}

// ServiceCatalog is the ordered category list. Order is significant: the
// classifier walks it front to back and the first match wins.
type ServiceCatalog []Service

// Lookup returns the sub-services of a category.
func (c ServiceCatalog) Lookup(category string) ([]string, bool) {
	for _, s := range c {
		if s.Name == category {
			return s.Subs, true
		}
	}
	return nil, false
}

// Names returns the category names in catalog order.
func (c ServiceCatalog) Names() []string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.Name
	}
	return names
}

// Add appends sub to category, creating the category if needed.
// Duplicate subs are ignored.
func (c ServiceCatalog) Add(category, sub string) ServiceCatalog {
	for i := range c {
		if c[i].Name != category {
			continue
		}
		if sub == "" {
			return c
		}
		for _, existing := range c[i].Subs {
			if existing == sub {
				return c
			}
		}
		c[i].Subs = append(c[i].Subs, sub)
		return c
	}
	svc := Service{Name: category}
	if sub != "" {
		svc.Subs = []string{sub}
	}
	return append(c, svc)
}

// Branch is a physical location: display name and canonical code.
type Branch struct {
	Name string `json:"name" mapstructure:"name"`
	Code string `json:"code" mapstructure:"code"`
}

// BranchDirectory is the ordered branch list used for header matching.
type BranchDirectory []Branch

// NameFor resolves a branch code back to its display name.
func (d BranchDirectory) NameFor(code string) (string, bool) {
	for _, b := range d {
		if b.Code == code {
			return b.Name, true
		}
	}
	return "", false
}
