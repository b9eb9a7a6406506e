package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	log "github.com/neontowel/gitix/internal/log"
)

// CredentialProvider supplies credentials for a remote endpoint. found is
// false when the provider has nothing to offer for that endpoint.
type CredentialProvider interface {
	Name() string
	Credentials(ctx context.Context, r *Repo, ep *transport.Endpoint) (auth transport.AuthMethod, found bool, err error)
}

// CredentialChain is an ordered list of providers tried one after another.
type CredentialChain []CredentialProvider

// DefaultCredentialChain tries the SSH agent first, then the HTTPS
// credential helper.
func DefaultCredentialChain() CredentialChain {
	return CredentialChain{SSHAgentProvider{}, CredentialHelperProvider{}}
}

// SSHAgentProvider authenticates ssh endpoints with keys held by ssh-agent.
type SSHAgentProvider struct{}

// Name implements CredentialProvider.
func (SSHAgentProvider) Name() string { return "ssh-agent" }

// Credentials implements CredentialProvider.
func (SSHAgentProvider) Credentials(_ context.Context, _ *Repo, ep *transport.Endpoint) (transport.AuthMethod, bool, error) {
	if ep.Protocol != "ssh" {
		return nil, false, nil
	}
	if os.Getenv("SSH_AUTH_SOCK") == "" {
		return nil, false, nil
	}
	user := ep.User
	if user == "" {
		user = "git"
	}
	auth, err := gitssh.NewSSHAgentAuth(user)
	if err != nil {
		return nil, false, fmt.Errorf("ssh agent: %w", err)
	}
	return auth, true, nil
}

// CredentialHelperProvider asks `git credential fill` for http(s) endpoints.
type CredentialHelperProvider struct{}

// Name implements CredentialProvider.
func (CredentialHelperProvider) Name() string { return "credential-helper" }

// Credentials implements CredentialProvider.
func (CredentialHelperProvider) Credentials(ctx context.Context, r *Repo, ep *transport.Endpoint) (transport.AuthMethod, bool, error) {
	if ep.Protocol != "http" && ep.Protocol != "https" {
		return nil, false, nil
	}
	if ep.User != "" && ep.Password != "" {
		return &githttp.BasicAuth{Username: ep.User, Password: ep.Password}, true, nil
	}

	out, err := r.runGit(ctx, strings.NewReader(credentialRequest(ep)), "credential", "fill")
	if err != nil {
		return nil, false, fmt.Errorf("credential fill: %w", err)
	}
	cred := parseCredentialOutput(string(out))
	if cred.Username == "" && cred.Password == "" {
		return nil, false, nil
	}
	return &githttp.BasicAuth{Username: cred.Username, Password: cred.Password}, true, nil
}

// Credential is one answer from a git credential helper.
type Credential struct {
	Protocol string
	Host     string
	Path     string
	Username string
	Password string
}

func credentialRequest(ep *transport.Endpoint) string {
	host := ep.Host
	if ep.Port != 0 {
		host = fmt.Sprintf("%s:%d", ep.Host, ep.Port)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "protocol=%s\nhost=%s\n", ep.Protocol, host)
	if path := strings.TrimPrefix(ep.Path, "/"); path != "" {
		fmt.Fprintf(&b, "path=%s\n", path)
	}
	if ep.User != "" {
		fmt.Fprintf(&b, "username=%s\n", ep.User)
	}
	b.WriteString("\n")
	return b.String()
}

func parseCredentialOutput(output string) Credential {
	var cred Credential
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(strings.TrimRight(line, "\r"), "=")
		if !ok {
			continue
		}
		switch key {
		case "protocol":
			cred.Protocol = value
		case "host":
			cred.Host = value
		case "path":
			cred.Path = value
		case "username":
			cred.Username = value
		case "password":
			cred.Password = value
		}
	}
	return cred
}

func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
		return true
	}
	return strings.Contains(err.Error(), "unable to authenticate")
}

// withAuth runs attempt with each credential the chain yields until one is
// accepted. Local endpoints need no credentials; http(s) endpoints fall
// back to an anonymous attempt when no provider has anything to offer.
func (c CredentialChain) withAuth(ctx context.Context, r *Repo, ep *transport.Endpoint, attempt func(transport.AuthMethod) error) error {
	if ep.Protocol == "file" || ep.Protocol == "git" {
		return attempt(nil)
	}

	var tried []string
	var lastErr error
	for _, provider := range c {
		auth, found, err := provider.Credentials(ctx, r, ep)
		if err != nil {
			log.Debug("credential provider failed", "provider", provider.Name(), "error", err)
			continue
		}
		if !found {
			continue
		}
		tried = append(tried, provider.Name())
		err = attempt(auth)
		if !isAuthError(err) {
			return err
		}
		log.Info("credentials rejected", "provider", provider.Name(), "host", ep.Host)
		lastErr = err
	}

	if len(tried) == 0 && (ep.Protocol == "http" || ep.Protocol == "https") {
		err := attempt(nil)
		if !isAuthError(err) {
			return err
		}
		lastErr = err
	}

	if len(tried) == 0 {
		tried = append(tried, "none available")
	}
	if lastErr == nil {
		return wrapKind(ErrAuthentication, "no credential method for %s (tried: %s)", ep.Host, strings.Join(tried, ", "))
	}
	return fmt.Errorf("%w: tried %s: %w", ErrAuthentication, strings.Join(tried, ", "), lastErr)
}
