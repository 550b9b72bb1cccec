package devenv

// FplTestConfig holds live credentials for tests that exercise the real
// fantasy.premierleague.com endpoints. It lives under dev/.state so it
// never gets committed.
type FplTestConfig struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
