package geocoding

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// ErrNoCredentials is returned when a provider has nothing configured.
var ErrNoCredentials = errors.New("geocoder credentials not configured")

type Credentials struct {
	Login    string
	Password string
}

// CredentialsProvider supplies the geocoder login. The client asks for it on
// every lookup, so implementations may rotate credentials between calls.
type CredentialsProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// FileCredentials reads a file holding one "login:password" line. The line is
// split on the first colon; the password may contain further colons.
type FileCredentials struct {
	Path string
}

func (f FileCredentials) Credentials(context.Context) (Credentials, error) {
	if f.Path == "" {
		return Credentials{}, ErrNoCredentials
	}
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, fmt.Errorf("%s: %w", f.Path, ErrNoCredentials)
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		login, password, ok := strings.Cut(line, ":")
		if !ok || login == "" {
			return Credentials{}, fmt.Errorf("credentials file %s: want login:password", f.Path)
		}
		return Credentials{Login: login, Password: password}, nil
	}
	return Credentials{}, fmt.Errorf("%s is empty: %w", f.Path, ErrNoCredentials)
}

// EnvCredentials reads GEOCODER_LOGIN and GEOCODER_PASSWORD. Files are
// optional .env files; the process environment wins over them.
type EnvCredentials struct {
	Files []string
}

const (
	envLogin    = "GEOCODER_LOGIN"
	envPassword = "GEOCODER_PASSWORD"
)

func (e EnvCredentials) Credentials(context.Context) (Credentials, error) {
	vals := map[string]string{}
	for _, f := range e.Files {
		m, err := godotenv.Read(f)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Credentials{}, fmt.Errorf("read %s: %w", f, err)
		}
		maps.Copy(vals, m)
	}
	get := func(k string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return vals[k]
	}

	c := Credentials{Login: get(envLogin), Password: get(envPassword)}
	if c.Login == "" {
		return Credentials{}, fmt.Errorf("%s unset: %w", envLogin, ErrNoCredentials)
	}
	return c, nil
}

type StaticCredentials Credentials

func (s StaticCredentials) Credentials(context.Context) (Credentials, error) {
	return Credentials(s), nil
}

// Chain returns the first credentials a provider yields.
type Chain []CredentialsProvider

func (c Chain) Credentials(ctx context.Context) (Credentials, error) {
	var errs []error
	for _, p := range c {
		cr, err := p.Credentials(ctx)
		if err == nil {
			return cr, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Credentials{}, ErrNoCredentials
	}
	return Credentials{}, errors.Join(errs...)
}

// Once resolves p on first use and keeps the result. Failures are not kept.
func Once(p CredentialsProvider) CredentialsProvider {
	return &onceCredentials{next: p}
}

type onceCredentials struct {
	next CredentialsProvider

	mu    sync.Mutex
	creds *Credentials
}

func (o *onceCredentials) Credentials(ctx context.Context) (Credentials, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.creds != nil {
		return *o.creds, nil
	}
	c, err := o.next.Credentials(ctx)
	if err != nil {
		return Credentials{}, err
	}
	o.creds = &c
	return c, nil
}
