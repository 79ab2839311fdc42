package auth

import (
	"fmt"
	"strings"
)

type Config struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	UserInfoURL  string   `toml:"user_info_url"`
	PublicURL    string   `toml:"public_url"`
	Moderators   []string `toml:"moderators"`
}

func (c Config) String() string {
	return fmt.Sprintf("\n ClientID: %s\n ClientSecret: %s\n AuthURL: %s\n TokenURL: %s\n UserInfoURL: %s\n PublicURL: %s\n Moderators: %s",
		c.ClientID,
		strings.Repeat("*", len(c.ClientSecret)),
		c.AuthURL,
		c.TokenURL,
		c.UserInfoURL,
		c.PublicURL,
		strings.Join(c.Moderators, ", "),
	)
}
