package testutil

import (
	"github.com/Veraticus/qflow/internal/model"
)

// Fixture is a predefined catalog for a common test scenario.
type Fixture struct {
	Name     string
	Services model.ServiceCatalog
}

// Predefined fixtures.
var (
	// FixtureMinimal has one category with two subs.
	FixtureMinimal = Fixture{
		Name: "Minimal",
		Services: model.ServiceCatalog{
			{Name: "Botox", Subs: []string{"ริ้วรอย", "กราม"}},
		},
	}

	// FixtureClinic mirrors a typical branch catalog.
	FixtureClinic = Fixture{
		Name: "Clinic",
		Services: model.ServiceCatalog{
			{Name: "Botox", Subs: []string{"ริ้วรอย", "กราม", "ลิฟกรอบหน้า"}},
			{Name: "Filler", Subs: []string{"ใต้ตา", "คาง", "ปาก"}},
			{Name: "Hifu", Subs: []string{"Hifu หน้า", "Hifu คอ"}},
			{Name: "Treatment", Subs: []string{"ทรีทเมนต์หน้าใส"}},
		},
	}
)

// DefaultDirectory is the branch list used across tests.
func DefaultDirectory() model.BranchDirectory {
	return model.BranchDirectory{
		{Name: "สยาม", Code: "SIAM"},
		{Name: "อุบล", Code: "UBN"},
		{Name: "ขอนแก่น", Code: "KKC"},
	}
}

// CatalogBuilder builds service catalogs fluently:
//
//	catalog := testutil.NewCatalogBuilder().
//		WithFixture(testutil.FixtureMinimal).
//		WithService("Filler", "ใต้ตา").
//		Build()
type CatalogBuilder struct {
	catalog model.ServiceCatalog
}

// NewCatalogBuilder starts an empty catalog.
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{}
}

// WithService adds a category and its subs. Repeated subs are ignored.
func (b *CatalogBuilder) WithService(name string, subs ...string) *CatalogBuilder {
	b.catalog = b.catalog.Add(name, "")
	for _, sub := range subs {
		b.catalog = b.catalog.Add(name, sub)
	}
	return b
}

// WithFixture adds every service of a fixture.
func (b *CatalogBuilder) WithFixture(f Fixture) *CatalogBuilder {
	for _, svc := range f.Services {
		b.WithService(svc.Name, svc.Subs...)
	}
	return b
}

// Build returns a copy of the catalog.
func (b *CatalogBuilder) Build() model.ServiceCatalog {
	out := make(model.ServiceCatalog, len(b.catalog))
	for i, svc := range b.catalog {
		out[i] = model.Service{Name: svc.Name, Subs: append([]string(nil), svc.Subs...)}
	}
	return out
}
