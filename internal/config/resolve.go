package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/singlebase/singlebase-go/internal/validation"
)

// Overrides are values given on the command line. They win over the
// environment, which wins over the stored profile.
type Overrides struct {
	Profile     string
	APIURL      string
	EndpointKey string
}

// Resolved holds the settings used to build a client.
type Resolved struct {
	// Profile is empty when no stored profile contributed.
	Profile     string
	APIKey      string
	APIURL      string
	EndpointKey string
	Headers     map[string]string
	BearerToken string
	Timeout     time.Duration
}

// Resolve merges the stored profile, SINGLEBASE_* variables and o.
// A stored profile is only required when no API key is set in the environment.
func Resolve(o Overrides) (Resolved, error) {
	env, err := LoadEnv()
	if err != nil {
		return Resolved{}, err
	}

	r := Resolved{BearerToken: env.BearerToken, Timeout: env.Timeout}

	name := firstNonBlank(o.Profile, env.Profile)
	if name != "" || env.APIKey == "" {
		if name == "" {
			if name, err = CurrentProfile(); err != nil {
				return Resolved{}, err
			}
		}
		p, err := LoadProfile(name)
		switch {
		case err == nil:
			r.Profile = name
			r.APIKey = p.APIKey
			r.APIURL = p.APIURL
			r.EndpointKey = p.EndpointKey
			r.Headers = p.Headers
		case errors.Is(err, ErrProfileNotFound) && env.APIKey != "":
		case errors.Is(err, ErrProfileNotFound) && firstNonBlank(o.Profile, env.Profile) == "":
			return Resolved{}, ErrNotConfigured
		default:
			return Resolved{}, err
		}
	}

	if v := strings.TrimSpace(env.APIKey); v != "" {
		r.APIKey = v
	}
	r.APIURL = firstNonBlank(o.APIURL, env.APIURL, r.APIURL)
	r.EndpointKey = firstNonBlank(o.EndpointKey, env.EndpointKey, r.EndpointKey)

	if r.APIKey == "" {
		return Resolved{}, ErrNotConfigured
	}
	if r.APIURL != "" {
		if err := validation.ValidateAPIURL(r.APIURL); err != nil {
			return Resolved{}, fmt.Errorf("invalid API URL: %w", err)
		}
	} else if r.EndpointKey != "" {
		if err := validation.ValidateEndpointKey(r.EndpointKey); err != nil {
			return Resolved{}, err
		}
	}
	return r, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
