package plex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cdzombak/plex-meta-migrator/internal/services"
)

func TestSignInReturnsAuthToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/users/signin" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("login") != "user" || r.PostForm.Get("password") != "pass" {
			t.Fatalf("unexpected form: %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"authToken":"tok-123"}`))
	}))
	defer server.Close()

	client := NewAccountClient("cid", WithAccountBaseURL(server.URL))
	token, err := client.SignIn(context.Background(), "user", "pass", "")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if token != "tok-123" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestSignInDetectsTwoFactorChallenge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"code":1029,"message":"Please enter the verification code"}]}`))
	}))
	defer server.Close()

	client := NewAccountClient("cid", WithAccountBaseURL(server.URL))
	_, err := client.SignIn(context.Background(), "user", "pass", "")
	if !errors.Is(err, ErrTwoFactorRequired) {
		t.Fatalf("expected ErrTwoFactorRequired, got %v", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"code":1001,"message":"Invalid credentials"}]}`))
	}))
	defer server.Close()

	client := NewAccountClient("cid", WithAccountBaseURL(server.URL))
	_, err := client.SignIn(context.Background(), "user", "nope", "")
	if err == nil || errors.Is(err, ErrTwoFactorRequired) {
		t.Fatalf("expected plain unauthorized error, got %v", err)
	}
	if !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestServersFiltersNonServerResources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/resources" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<resources>
  <resource name="Old Server" accessToken="tok-a" provides="server">
    <connections>
      <connection uri="https://1-2-3-4.abc.plex.direct:32400" protocol="https" local="0" relay="0"/>
      <connection uri="http://10.0.0.4:32400" protocol="http" local="1" relay="0"/>
    </connections>
  </resource>
  <resource name="Player" accessToken="tok-b" provides="player"/>
</resources>`))
	}))
	defer server.Close()

	client := NewAccountClient("cid", WithAccountBaseURL(server.URL))
	servers, err := client.Servers(context.Background(), "account-token")
	if err != nil {
		t.Fatalf("Servers: %v", err)
	}
	if len(servers) != 1 || servers[0].Name != "Old Server" {
		t.Fatalf("unexpected servers: %+v", servers)
	}

	sc, err := client.Connect(servers[0])
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if sc.BaseURL() != "https://1-2-3-4.abc.plex.direct:32400" {
		t.Fatalf("expected plex.direct https connection, got %q", sc.BaseURL())
	}
}
