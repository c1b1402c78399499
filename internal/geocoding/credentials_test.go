package geocoding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFileCredentials(t *testing.T) {
	p := writeFile(t, "credentials.txt", "\nmylogin:pa:ss\n")
	got, err := FileCredentials{Path: p}.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if got.Login != "mylogin" || got.Password != "pa:ss" {
		t.Fatalf("got %+v", got)
	}

	bad := writeFile(t, "bad.txt", "no colon here")
	if _, err := (FileCredentials{Path: bad}).Credentials(context.Background()); err == nil {
		t.Fatal("expected error for a line without colon")
	}

	missing := filepath.Join(t.TempDir(), "nope.txt")
	_, err = FileCredentials{Path: missing}.Credentials(context.Background())
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("missing file: got %v", err)
	}
}

func TestEnvCredentials(t *testing.T) {
	env := writeFile(t, ".env", "GEOCODER_LOGIN=fromfile\nGEOCODER_PASSWORD=filepw\n")
	t.Setenv(envLogin, "")
	t.Setenv(envPassword, "")

	got, err := EnvCredentials{Files: []string{env, "/does/not/exist/.env"}}.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if got.Login != "fromfile" || got.Password != "filepw" {
		t.Fatalf("got %+v", got)
	}

	t.Setenv(envLogin, "fromenv")
	got, _ = EnvCredentials{Files: []string{env}}.Credentials(context.Background())
	if got.Login != "fromenv" || got.Password != "filepw" {
		t.Fatalf("process env should win: %+v", got)
	}

	t.Setenv(envLogin, "")
	if _, err := (EnvCredentials{}).Credentials(context.Background()); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestChain(t *testing.T) {
	t.Setenv(envLogin, "")
	chain := Chain{
		EnvCredentials{},
		FileCredentials{Path: filepath.Join(t.TempDir(), "missing")},
		StaticCredentials{Login: "static", Password: "pw"},
	}
	got, err := chain.Credentials(context.Background())
	if err != nil || got.Login != "static" {
		t.Fatalf("got %+v, %v", got, err)
	}

	_, err = Chain{EnvCredentials{}}.Credentials(context.Background())
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected joined ErrNoCredentials, got %v", err)
	}
	if _, err := (Chain{}).Credentials(context.Background()); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("empty chain: %v", err)
	}
}

type countingProvider struct {
	calls int
	err   error
}

func (c *countingProvider) Credentials(context.Context) (Credentials, error) {
	c.calls++
	if c.err != nil {
		return Credentials{}, c.err
	}
	return Credentials{Login: "user", Password: "pw"}, nil
}

func TestOnce(t *testing.T) {
	next := &countingProvider{}
	p := Once(next)
	for i := 0; i < 3; i++ {
		got, err := p.Credentials(context.Background())
		if err != nil || got.Login != "user" {
			t.Fatalf("call %d: %+v, %v", i, got, err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("provider calls=%d want 1", next.calls)
	}

	failing := &countingProvider{err: ErrNoCredentials}
	p = Once(failing)
	for i := 0; i < 2; i++ {
		if _, err := p.Credentials(context.Background()); !errors.Is(err, ErrNoCredentials) {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if failing.calls != 2 {
		t.Fatalf("failures must not be kept, calls=%d", failing.calls)
	}
}
