package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mqtools/mq/metrics"
	"github.com/mqtools/mq/transport"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultLoginUrl = "https://anypoint.mulesoft.com/accounts/login"

	// TokenTtl is enforced by the store, not by the token claims.
	TokenTtl = 900 * time.Second
)

var loginFunc = login

// AuthError means the login endpoint answered with a non-2xx status.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("Login failed, status: %d, message: %s", e.Status, e.Message)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type Cache struct {
	store    TokenStore
	client   *transport.Client
	loginUrl string
}

func NewCache(store TokenStore, client *transport.Client, loginUrl string) *Cache {
	if loginUrl == "" {
		loginUrl = DefaultLoginUrl
	}
	return &Cache{
		store:    store,
		client:   client,
		loginUrl: loginUrl,
	}
}

// GetToken returns the cached bearer token for the credentials, logging in
// on a miss. A cached token is returned as is even if upstream already
// expired it.
func (c *Cache) GetToken(ctx context.Context, username, password string) (string, error) {
	key := username + password

	token, found, err := c.store.Get(ctx, key)
	if err != nil {
		metrics.IncTokenLookup("error")
		logrus.Warnf("Token cache could not be read, a new token will be requested: %s", err)
	} else if found {
		metrics.IncTokenLookup("hit")
		logrus.Debugf("Token of user[%s] is found in cache.", username)
		return token, nil
	} else {
		metrics.IncTokenLookup("miss")
	}

	token, err = loginFunc(ctx, c, username, password)
	if err != nil {
		return "", err
	}

	err = c.store.Set(ctx, key, token, TokenTtl)
	if err != nil {
		logrus.Warnf("Token of user[%s] could not be cached: %s", username, err)
	} else {
		logrus.Debugf("Token of user[%s] is cached for %s.", username, TokenTtl.String())
	}

	return token, nil
}

func login(ctx context.Context, c *Cache, username, password string) (string, error) {
	request, err := transport.NewJSONRequest(ctx, "POST", c.loginUrl, &loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", err
	}

	response, err := c.client.Do(request)
	if err != nil {
		return "", err
	}

	body := transport.ReadBody(response)
	if !transport.IsSuccess(response.StatusCode) {
		return "", &AuthError{Status: response.StatusCode, Message: body}
	}

	tokenResponse := &loginResponse{}
	err = json.NewDecoder(strings.NewReader(body)).Decode(tokenResponse)
	if err != nil {
		return "", errors.Wrap(err, "Login response could not be parsed")
	}

	if tokenResponse.AccessToken == "" {
		return "", &AuthError{Status: response.StatusCode, Message: "login response does not contain an access token"}
	}

	logrus.Debugf("User[%s] has logged in, status: %s", username, http.StatusText(response.StatusCode))
	return tokenResponse.AccessToken, nil
}
