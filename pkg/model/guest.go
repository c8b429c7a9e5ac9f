package model

import "errors"

type GuestDetails struct {
	Adults   []AdultDetail `json:"adults" bson:"adults" validate:"min=1,dive"`
	Children []ChildDetail `json:"children,omitempty" bson:"children,omitempty" validate:"omitempty,dive"`
}

type AdultDetail struct {
	FirstName string `json:"first_name" bson:"first_name" validate:"required"`
	LastName  string `json:"last_name,omitempty" bson:"last_name,omitempty"`
	// Contact fields are required for the first adult only.
	Email string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type ChildDetail struct {
	FirstName string `json:"first_name" bson:"first_name" validate:"required"`
	LastName  string `json:"last_name,omitempty" bson:"last_name,omitempty"`
	Age       int    `json:"age" bson:"age" validate:"min=0,max=17"`
}

func (g *GuestDetails) AddAdult(adult AdultDetail) {
	g.Adults = append(g.Adults, adult)
}

func (g *GuestDetails) AddChild(child ChildDetail) error {
	if child.Age >= 18 {
		return errors.New("child must be under 18 years old")
	}
	g.Children = append(g.Children, child)
	return nil
}

// PrimaryContact returns the first adult's email and phone when both are set.
func (g *GuestDetails) PrimaryContact() (email, phone string, ok bool) {
	if len(g.Adults) == 0 {
		return "", "", false
	}
	first := g.Adults[0]
	if first.Email == "" || first.Phone == "" {
		return "", "", false
	}
	return first.Email, first.Phone, true
}

func (g *GuestDetails) TotalGuests() int {
	return len(g.Adults) + len(g.Children)
}

func (g *GuestDetails) Validate() error {
	if len(g.Adults) == 0 {
		return errors.New("at least one adult guest required")
	}
	first := g.Adults[0]
	if first.Email == "" || first.Phone == "" {
		return errors.New("primary adult must provide email and phone")
	}
	for _, child := range g.Children {
		if child.Age >= 18 {
			return errors.New("child must be under 18 years old")
		}
	}
	return nil
}
