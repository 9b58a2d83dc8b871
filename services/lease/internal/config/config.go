// Package config loads the webhook edge configuration: the inbound
// endpoints the wallet collaborator may post to, and the outbound
// subscribers registry events are pushed to.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type WalletEndpoint struct {
	Token  string `yaml:"token"`
	Secret string `yaml:"secret"`
}

type Subscriber struct {
	URL    string `yaml:"url"`
	Secret string `yaml:"secret"`
}

type Webhooks struct {
	WalletEndpoints []WalletEndpoint `yaml:"wallet_endpoints"`
	Subscribers     []Subscriber     `yaml:"subscribers"`
}

func (w Webhooks) WalletSecret(token string) (string, bool) {
	for _, e := range w.WalletEndpoints {
		if e.Token == token {
			return e.Secret, true
		}
	}
	return "", false
}

// LoadWebhooks reads the yaml file at path. A missing path yields an empty
// configuration: no inbound endpoints, no subscribers.
func LoadWebhooks(path string) (Webhooks, error) {
	if path == "" {
		return Webhooks{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Webhooks{}, err
	}
	var out Webhooks
	if err := yaml.Unmarshal(b, &out); err != nil {
		return Webhooks{}, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, e := range out.WalletEndpoints {
		if e.Token == "" || e.Secret == "" {
			return Webhooks{}, fmt.Errorf("%s: wallet_endpoints[%d] needs token and secret", path, i)
		}
	}
	for i, s := range out.Subscribers {
		if s.URL == "" || s.Secret == "" {
			return Webhooks{}, fmt.Errorf("%s: subscribers[%d] needs url and secret", path, i)
		}
	}
	return out, nil
}
