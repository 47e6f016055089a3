package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
)

const (
	accountType      = "service_account"
	authURI          = "https://accounts.google.com/o/oauth2/auth"
	tokenURI         = "https://oauth2.googleapis.com/token"
	authProviderCert = "https://www.googleapis.com/oauth2/v1/certs"
	certURLPrefix    = "https://www.googleapis.com/robot/v1/metadata/x509/"
)

// ErrNoCredential signals that no credential could be resolved from any
// source. Callers must not attempt API calls in that case.
var ErrNoCredential = errors.New("no credential available")

// ServiceAccount mirrors the Google service-account JSON document.
type ServiceAccount struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url"`
}

// Credential is a resolved identity for the speech and synthesis APIs. It
// holds the original JSON document so vendor clients can consume it as-is.
// The private key is not validated here; a malformed key surfaces as an
// error on the first API call, not at resolution time.
type Credential struct {
	Account ServiceAccount `json:"account"`
	Raw     []byte         `json:"raw"`
}

// ClientOption returns the option used to construct vendor API clients
// authenticated as this credential.
func (c *Credential) ClientOption() option.ClientOption {
	return option.WithCredentialsJSON(c.Raw)
}

// ManualFields are the pieces a user supplies by hand when no credential
// file is available.
type ManualFields struct {
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
}

// Resolver produces credentials from, in order of precedence: an inline
// JSON document from the environment, a JSON file on disk, or manually
// entered fields.
type Resolver struct {
	envJSON     string
	defaultFile string
}

func NewResolver(envJSON, defaultFile string) *Resolver {
	return &Resolver{envJSON: envJSON, defaultFile: defaultFile}
}

// FromEnv resolves the credential held inline in the environment, if one
// was configured.
func (r *Resolver) FromEnv() (*Credential, error) {
	if r.envJSON == "" {
		return nil, ErrNoCredential
	}
	return parse([]byte(r.envJSON))
}

// FromFile resolves a credential from a JSON file. An empty path falls
// back to the conventional default file when it exists. A missing file
// yields ErrNoCredential so callers can report it as a warning rather
// than a hard failure.
func (r *Resolver) FromFile(path string) (*Credential, error) {
	if path == "" {
		if _, err := os.Stat(r.defaultFile); err != nil {
			return nil, fmt.Errorf("%w: no path given and %s not found", ErrNoCredential, r.defaultFile)
		}
		path = r.defaultFile
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: credentials file not found: %s", ErrNoCredential, path)
		}
		return nil, fmt.Errorf("read credentials file %s: %w", path, err)
	}

	return parse(raw)
}

// FromManual assembles a credential from manually entered fields into the
// same document shape the vendor SDK expects. The certificate URL is
// derived from the client email with its @ percent-encoded.
func (r *Resolver) FromManual(f ManualFields) (*Credential, error) {
	acct := ServiceAccount{
		Type:                    accountType,
		ProjectID:               f.ProjectID,
		PrivateKeyID:            f.PrivateKeyID,
		PrivateKey:              f.PrivateKey,
		ClientEmail:             f.ClientEmail,
		AuthURI:                 authURI,
		TokenURI:                tokenURI,
		AuthProviderX509CertURL: authProviderCert,
		ClientX509CertURL:       certURLPrefix + strings.ReplaceAll(f.ClientEmail, "@", "%40"),
	}

	if err := acct.validate(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(acct)
	if err != nil {
		return nil, fmt.Errorf("marshal credential document: %w", err)
	}

	return &Credential{Account: acct, Raw: raw}, nil
}

// Resolve applies the source precedence: environment first, then the
// given file path (or the default file).
func (r *Resolver) Resolve(path string) (*Credential, error) {
	if cred, err := r.FromEnv(); err == nil {
		return cred, nil
	}
	return r.FromFile(path)
}

func parse(raw []byte) (*Credential, error) {
	var acct ServiceAccount
	if err := json.Unmarshal(raw, &acct); err != nil {
		return nil, fmt.Errorf("parse credential document: %w", err)
	}

	if err := acct.validate(); err != nil {
		return nil, err
	}

	return &Credential{Account: acct, Raw: raw}, nil
}

func (a ServiceAccount) validate() error {
	var missing []string
	if a.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if a.PrivateKey == "" {
		missing = append(missing, "private_key")
	}
	if a.ClientEmail == "" {
		missing = append(missing, "client_email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: credential document missing required fields: %s", ErrNoCredential, strings.Join(missing, ", "))
	}
	return nil
}
