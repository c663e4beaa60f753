package pokeapi

// Upstream documents. Every field is a pointer or slice so that an absent
// upstream field projects to null.

type Pokemon struct {
	Name      *string        `json:"name"`
	Abilities []*Abilities   `json:"abilities"`
	Forms     []*Form        `json:"forms"`
	Types     []*PokemonType `json:"types"`
	Sprites   *Sprite        `json:"sprites"`
}

func (p *Pokemon) Field(name string) (any, bool) {
	switch name {
	case "name":
		return p.Name, true
	case "abilities":
		return p.Abilities, true
	case "forms":
		return p.Forms, true
	case "types":
		return p.Types, true
	case "sprites":
		return p.Sprites, true
	}
	return nil, false
}

type Abilities struct {
	Ability  *Ability `json:"ability"`
	IsHidden *bool    `json:"is_hidden"`
	Slot     *int     `json:"slot"`
}

func (a *Abilities) Field(name string) (any, bool) {
	switch name {
	case "ability":
		return a.Ability, true
	case "is_hidden":
		return a.IsHidden, true
	case "slot":
		return a.Slot, true
	}
	return nil, false
}

type Ability struct {
	Name *string `json:"name"`
	URL  *string `json:"url"`
}

func (a *Ability) Field(name string) (any, bool) {
	switch name {
	case "name":
		return a.Name, true
	case "url":
		return a.URL, true
	}
	return nil, false
}

// Form is a named link to a pokemon-form document; detail is resolved from URL.
type Form struct {
	Name *string `json:"name"`
	URL  *string `json:"url"`
}

func (f *Form) Field(name string) (any, bool) {
	switch name {
	case "name":
		return f.Name, true
	case "url":
		return f.URL, true
	}
	return nil, false
}

type FormDetail struct {
	ID           *int    `json:"id"`
	IsBattleOnly *bool   `json:"is_battle_only"`
	Name         *string `json:"name"`
	Sprites      *Sprite `json:"sprites"`
}

func (d *FormDetail) Field(name string) (any, bool) {
	switch name {
	case "id":
		return d.ID, true
	case "is_battle_only":
		return d.IsBattleOnly, true
	case "name":
		return d.Name, true
	case "sprites":
		return d.Sprites, true
	}
	return nil, false
}

type Sprite struct {
	FrontDefault *string `json:"front_default"`
}

func (s *Sprite) Field(name string) (any, bool) {
	if name == "front_default" {
		return s.FrontDefault, true
	}
	return nil, false
}

type PokemonType struct {
	Slot *int      `json:"slot"`
	Type *TypeInfo `json:"type"`
}

func (t *PokemonType) Field(name string) (any, bool) {
	switch name {
	case "slot":
		return t.Slot, true
	case "type":
		return t.Type, true
	}
	return nil, false
}

type TypeInfo struct {
	Name *string `json:"name"`
	URL  *string `json:"url"`
}

func (t *TypeInfo) Field(name string) (any, bool) {
	switch name {
	case "name":
		return t.Name, true
	case "url":
		return t.URL, true
	}
	return nil, false
}
