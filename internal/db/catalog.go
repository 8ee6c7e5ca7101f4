package db

// CatalogRow is implemented by every reference-data model so the catalog
// service can enforce name uniqueness generically.
type CatalogRow interface {
	RowID() uint
	RowName() string
}

func (w Weapon) RowID() uint     { return w.ID }
func (w Weapon) RowName() string { return w.Name }

func (s Spell) RowID() uint     { return s.ID }
func (s Spell) RowName() string { return s.Name }

func (s Skill) RowID() uint     { return s.ID }
func (s Skill) RowName() string { return s.Name }

func (c Creature) RowID() uint     { return c.ID }
func (c Creature) RowName() string { return c.Name }

func (i Item) RowID() uint     { return i.ID }
func (i Item) RowName() string { return i.Name }
