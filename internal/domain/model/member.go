// Package model contains domain models passed between layers.
package model

// Member is a single roster record.
// ID is assigned by the store and never changes afterwards.
type Member struct {
	ID       int    `json:"id"`
	Position string `json:"position"`
	Name     string `json:"name"`
	Hometown string `json:"hometown"`
	Year     string `json:"year"` // free-form class standing, e.g. "Senior"
	Major    string `json:"major"`
	Bio      string `json:"bio"`
	Img      string `json:"img,omitempty"` // opaque asset path, never served
}

// Fields holds every writable member field. It is the validated shape of a
// create or replace payload and never carries an id.
type Fields struct {
	Position string
	Name     string
	Hometown string
	Year     string
	Major    string
	Bio      string
	Img      string
}

// Member builds a Member with the given id from f.
func (f Fields) Member(id int) Member {
	return Member{
		ID:       id,
		Position: f.Position,
		Name:     f.Name,
		Hometown: f.Hometown,
		Year:     f.Year,
		Major:    f.Major,
		Bio:      f.Bio,
		Img:      f.Img,
	}
}

// Overwrite replaces every non-id field of m with f.
func (f Fields) Overwrite(m *Member) {
	id := m.ID
	*m = f.Member(id)
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Position *string
	Name     *string
	Hometown *string
	Year     *string
	Major    *string
	Bio      *string
	Img      *string
}

// Empty reports whether the patch carries no fields.
func (p Patch) Empty() bool {
	return p.Position == nil && p.Name == nil && p.Hometown == nil &&
		p.Year == nil && p.Major == nil && p.Bio == nil && p.Img == nil
}

// Apply merges the set fields of p into m.
func (p Patch) Apply(m *Member) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&m.Position, p.Position)
	set(&m.Name, p.Name)
	set(&m.Hometown, p.Hometown)
	set(&m.Year, p.Year)
	set(&m.Major, p.Major)
	set(&m.Bio, p.Bio)
	set(&m.Img, p.Img)
}
