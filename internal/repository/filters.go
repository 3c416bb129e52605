// Package repository implements the data-access layer over gorm. Each entity
// exposes the same five operations (FindOne, FindAll, Create, Update,
// Destroy) with equality filters on named fields.
package repository

import "errors"

// ErrEmptyFilter rejects Update/Destroy calls whose filter matches every
// row. Listing with an empty filter is fine; mutating with one is not.
var ErrEmptyFilter = errors.New("empty filter")

type UserFilter struct {
	ID       *uint
	Username *string
	Email    *string
}

func (f UserFilter) where() map[string]any {
	w := map[string]any{}
	if f.ID != nil {
		w["id"] = *f.ID
	}
	if f.Username != nil {
		w["username"] = *f.Username
	}
	if f.Email != nil {
		w["email"] = *f.Email
	}
	return w
}

type UserChanges struct {
	Username *string
}

func (c UserChanges) values() map[string]any {
	v := map[string]any{}
	if c.Username != nil {
		v["username"] = *c.Username
	}
	return v
}

type BoardChanges struct {
	Name *string
}

func (c BoardChanges) values() map[string]any {
	v := map[string]any{}
	if c.Name != nil {
		v["name"] = *c.Name
	}
	return v
}

type BoardFilter struct {
	ID    *uint
	Owner *uint
}

func (f BoardFilter) where() map[string]any {
	w := map[string]any{}
	if f.ID != nil {
		w["id"] = *f.ID
	}
	if f.Owner != nil {
		w["owner"] = *f.Owner
	}
	return w
}

type SuggestionChanges struct {
	Text *string
}

func (c SuggestionChanges) values() map[string]any {
	v := map[string]any{}
	if c.Text != nil {
		v["text"] = *c.Text
	}
	return v
}

type SuggestionFilter struct {
	ID        *uint
	BoardID   *uint
	CreatorID *uint
}

func (f SuggestionFilter) where() map[string]any {
	w := map[string]any{}
	if f.ID != nil {
		w["id"] = *f.ID
	}
	if f.BoardID != nil {
		w["board_id"] = *f.BoardID
	}
	if f.CreatorID != nil {
		w["creator_id"] = *f.CreatorID
	}
	return w
}
