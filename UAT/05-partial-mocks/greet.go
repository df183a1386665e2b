// Package partial mixes recorded answers with real implementations.
package partial

import "fmt"

// Greeter introduces someone.
type Greeter interface {
	Name() string
	Greet(greeting string) string
}

// Person is the real Greeter.
type Person struct {
	Given string
}

// Greet greets with the person's given name.
func (p Person) Greet(greeting string) string {
	return greeting + ", " + p.Given
}

// Name returns the given name.
func (p Person) Name() string {
	return p.Given
}

// Introduce greets and names g.
func Introduce(g Greeter) string {
	return fmt.Sprintf("%s (I am %s)", g.Greet("hello"), g.Name())
}

// Banner shouts an introduction through upper.
func Banner(upper func(string) string, g Greeter) string {
	return upper(Introduce(g))
}
