// Package sso builds single sign-on checkout URLs that log a customer into
// the hosted checkout without asking for their password.
package sso

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/foxy/foxy-go/pkg/foxyerr"
)

var (
	ErrMissingCustomer = foxyerr.ErrConfiguration.New("customer id is required")
	ErrMissingSecret   = foxyerr.ErrConfiguration.New("store secret is required")
	ErrInvalidDomain   = foxyerr.ErrInvalidURL.New("invalid store domain")
)

// Options describes the checkout session to create.
type Options struct {
	Customer  string // customer id
	Secret    string // store secret key
	Domain    string // store domain, e.g. https://example.foxycart.com
	Timestamp int64  // unix milliseconds; the current time when zero
	Session   string // optional session id sent as fcsid
}

// AuthToken returns the sha1 token proving knowledge of the store secret.
func AuthToken(customer string, timestamp int64, secret string) string {
	sum := sha1.Sum([]byte(customer + "|" + strconv.FormatInt(timestamp, 10) + "|" + secret))
	return hex.EncodeToString(sum[:])
}

// CreateURL returns the checkout URL for opts.
func CreateURL(opts Options) (string, error) {
	if opts.Customer == "" {
		return "", ErrMissingCustomer
	}
	if opts.Secret == "" {
		return "", ErrMissingSecret
	}
	u, err := url.Parse(opts.Domain)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", ErrInvalidDomain.Msg("invalid store domain: " + opts.Domain)
	}

	ts := opts.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	var q strings.Builder
	q.WriteString("fc_customer_id=" + url.QueryEscape(opts.Customer))
	q.WriteString("&fc_auth_token=" + AuthToken(opts.Customer, ts, opts.Secret))
	q.WriteString("&timestamp=" + strconv.FormatInt(ts, 10))
	if opts.Session != "" {
		q.WriteString("&fcsid=" + url.QueryEscape(opts.Session))
	}

	checkout := url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/checkout", RawQuery: q.String()}
	return checkout.String(), nil
}
