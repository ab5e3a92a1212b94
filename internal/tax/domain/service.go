package domain

// PolicyProvider returns the tax policy currently in force.
type PolicyProvider interface {
	Policy() Policy
}
