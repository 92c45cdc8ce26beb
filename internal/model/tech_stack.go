package model

import "strings"

type TechStack string

const (
	TechStackReact    TechStack = "React.js"
	TechStackNode     TechStack = "Node.js"
	TechStackPython   TechStack = "Python"
	TechStackDatabase TechStack = "Database (SQL/PostgreSQL)"
	TechStackDevOps   TechStack = "DevOps (Docker, CI/CD)"
)

var techStacks = []TechStack{
	TechStackReact,
	TechStackNode,
	TechStackPython,
	TechStackDatabase,
	TechStackDevOps,
}

// TechStacks returns the interview tracks in display order.
func TechStacks() []TechStack {
	out := make([]TechStack, len(techStacks))
	copy(out, techStacks)
	return out
}

func (t TechStack) Valid() bool {
	for _, s := range techStacks {
		if s == t {
			return true
		}
	}
	return false
}

// ParseTechStack matches case-insensitively so "python" and "Python" are
// the same track.
func ParseTechStack(raw string) (TechStack, bool) {
	raw = strings.TrimSpace(raw)
	for _, s := range techStacks {
		if strings.EqualFold(string(s), raw) {
			return s, true
		}
	}
	return "", false
}
