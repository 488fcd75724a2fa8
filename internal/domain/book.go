package domain

import "fmt"

// Book is a catalogue record. ID is assigned by the store on insert and never
// changes afterwards.
type Book struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func (b Book) String() string {
	return fmt.Sprintf("Book(id=%d title=%s)", b.ID, b.Title)
}

// BookFilter selects books by AND-ing every supplied predicate.
// A zero ID/IDGt/IDLt or an empty Title counts as "not supplied", so id=0 and
// title="" cannot be filtered on.
type BookFilter struct {
	ID    int    `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	IDGt  int    `json:"id__gt,omitempty"`
	IDLt  int    `json:"id__lt,omitempty"`
}

// Lookup addresses a single book by ID or, failing that, by title.
type Lookup struct {
	ID    *int
	Title *string
}

// ByID returns a Lookup for the given id.
func ByID(id int) Lookup {
	return Lookup{ID: &id}
}

// ByTitle returns a Lookup for the first book with the given title.
func ByTitle(title string) Lookup {
	return Lookup{Title: &title}
}

// BookUpdate is the input of an update operation.
type BookUpdate struct {
	ID    int    `json:"book_id"`
	Title string `json:"title"`
}
