package hm

// Env represents a type environment
type Env interface {
	TypeOf(name string) (Type, bool)
	Add(name string, t Type) Env
}

// SimpleEnv is a simple implementation of Env
type SimpleEnv struct {
	types map[string]Type
}

var _ Env = (*SimpleEnv)(nil)

// NewSimpleEnv creates a new SimpleEnv
func NewSimpleEnv() *SimpleEnv {
	return &SimpleEnv{
		types: make(map[string]Type),
	}
}

// TypeOf returns the type bound to a name
func (env *SimpleEnv) TypeOf(name string) (Type, bool) {
	t, exists := env.types[name]
	return t, exists
}

// Add adds a binding to the environment
func (env *SimpleEnv) Add(name string, t Type) Env {
	env.types[name] = t
	return env
}
