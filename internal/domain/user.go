package domain

import "strings"

// User identifies the person behind the current session.
// The zero value is the anonymous user.
type User struct {
	ID       string
	Username string
	Name     string
}

// Anonymous reports whether no session identity is known.
func (u User) Anonymous() bool {
	return u.ID == "" && u.Username == ""
}

// DisplayName prefers the full name, then the username, then "Moi".
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	}
	return "Moi"
}

// Initials returns up to two upper-case initials of the display name.
func (u User) Initials() string {
	return initials(u.DisplayName())
}

func initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(part))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
