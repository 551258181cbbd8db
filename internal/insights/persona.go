package insights

import (
	"fmt"
	"strings"
)

// Persona selects the audience an insight is written for
type Persona string

const (
	PersonaDeveloper Persona = "developer"
	PersonaQA        Persona = "qa"
	PersonaBusiness  Persona = "business"
)

// Personas lists the supported personas
func Personas() []Persona {
	return []Persona{PersonaDeveloper, PersonaQA, PersonaBusiness}
}

// ParsePersona validates a persona name, case-insensitively
func ParsePersona(s string) (Persona, error) {
	p := Persona(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Personas() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown persona %q (want developer, qa or business)", s)
}

func (p Persona) focus() string {
	switch p {
	case PersonaQA:
		return "Focus on failing requests, error patterns, flaky or slow endpoints and what should be covered by tests."
	case PersonaBusiness:
		return "Focus on user-facing impact: page weight, perceived speed and reliability. Avoid jargon."
	default:
		return "Focus on concrete engineering fixes: slow and large requests, caching, security and connection usage."
	}
}
