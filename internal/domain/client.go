package domain

import "time"

// ClientStatusOnboarding is assigned to clients created from a lead conversion.
const ClientStatusOnboarding = "onboarding"

// Client is a customer company.
type Client struct {
	ID            string
	CompanyName   string
	Website       *string
	Industry      *string
	EmployeeCount *string
	Status        string
	CreatedAt     time.Time
}

// Contact is a person attached to a client. ProfileID links a portal login.
type Contact struct {
	ID        string
	ClientID  string
	ProfileID *string
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	JobTitle  *string
	IsPrimary bool
	CreatedAt time.Time
}
