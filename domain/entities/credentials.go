package entities

// Credentials are the interactive login inputs
type Credentials struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Environment is a named deployment of the application under test
type Environment struct {
	Name     string `json:"name" yaml:"name"`
	BaseURL  string `json:"url" yaml:"url"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Credentials returns the environment's login credentials
func (e Environment) Credentials() Credentials {
	return Credentials{Username: e.Username, Password: e.Password}
}
