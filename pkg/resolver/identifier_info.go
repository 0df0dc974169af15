package resolver

// ScopeType represents where an identifier is bound.
type ScopeType string

const (
	GlobalScope      ScopeType = "global"
	ClassMemberScope ScopeType = "class" // Bound in a class body.
	LocalScope       ScopeType = "local" // Bound in a function or lambda.
)

// IdentifierInfo holds information about a bound identifier.
type IdentifierInfo struct {
	Name          string    // The identifier name.
	UniqueID      uint64    // Unique identifier across all scopes.
	ScopeType     ScopeType // Where the binding lives.
	References    int       // Uses resolved to this binding.
	DefiningScope *Scope    // The scope where this identifier is defined.
}
