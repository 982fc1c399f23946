package model

// Author identifies who wrote a comment. The comments table stores a
// nullable author_id where NULL means "the customer"; this type keeps that
// convention out of the rest of the codebase.
type Author struct {
	id *string
}

// StaffAuthor returns an Author for an agent or admin profile id.
func StaffAuthor(id string) Author {
	return Author{id: &id}
}

// CustomerAuthor returns the author used for customer-originated comments,
// such as replies received by email.
func CustomerAuthor() Author {
	return Author{}
}

// ProfileID returns the profile id for staff authors, nil for customers.
func (a Author) ProfileID() *string {
	return a.id
}

// IsCustomer reports whether the comment came from the ticket requester.
func (a Author) IsCustomer() bool {
	return a.id == nil
}
