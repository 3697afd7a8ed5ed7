// Package imap provides an IMAP-backed implementation of
// scholarmail.Mailbox using go-imap.
package imap

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/mwalczyk/scholarmail"
)

// DefaultPort is the standard IMAPS port.
const DefaultPort = 993

// Ensure Client implements scholarmail.Mailbox at compile time.
var _ scholarmail.Mailbox = (*Client)(nil)

// Client is a Mailbox backed by a live IMAP connection. Message
// identifiers are UIDs rendered as decimal strings; they stay opaque to
// callers.
type Client struct {
	c *imapclient.Client
}

// Dial connects to the IMAP server over TLS, authenticates, and selects
// the given folder.
func Dial(host string, port int, user, password, folder string) (*Client, error) {
	if port <= 0 {
		port = DefaultPort
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	c, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if err := c.Login(user, password).Wait(); err != nil {
		_ = c.Close()
		return nil, scholarmail.Errorf(scholarmail.EUNAUTHORIZED, "IMAP login for %s: %v", user, err)
	}
	if _, err := c.Select(folder, nil).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("select %q: %w", folder, err)
	}
	return &Client{c: c}, nil
}

// Search returns the UIDs of messages matching the query. IMAP SINCE is
// inclusive and BEFORE exclusive by calendar date, which is exactly the
// MailQuery contract.
func (cl *Client) Search(ctx context.Context, q scholarmail.MailQuery) ([]string, error) {
	criteria := &imap.SearchCriteria{
		Since:  q.Since,
		Before: q.Before,
	}
	if q.From != "" {
		criteria.Header = append(criteria.Header, imap.SearchCriteriaHeaderField{
			Key:   "From",
			Value: q.From,
		})
	}

	data, err := cl.c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("IMAP search: %w", err)
	}

	var ids []string
	for _, uid := range data.AllUIDs() {
		ids = append(ids, strconv.FormatUint(uint64(uid), 10))
	}
	return ids, nil
}

// Fetch returns the raw RFC822 bytes of one message.
func (cl *Client) Fetch(ctx context.Context, id string) ([]byte, error) {
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return nil, scholarmail.Errorf(scholarmail.EINVALID, "malformed message id %q", id)
	}

	section := &imap.FetchItemBodySection{}
	cmd := cl.c.Fetch(imap.UIDSetNum(imap.UID(uid)), &imap.FetchOptions{
		BodySection: []*imap.FetchItemBodySection{section},
	})
	msgs, err := cmd.Collect()
	if err != nil {
		return nil, fmt.Errorf("IMAP fetch %s: %w", id, err)
	}
	if len(msgs) == 0 {
		return nil, scholarmail.Errorf(scholarmail.ENOTFOUND, "message %s not found", id)
	}
	body := msgs[0].FindBodySection(section)
	if body == nil {
		return nil, scholarmail.Errorf(scholarmail.ENOTFOUND, "message %s has no body", id)
	}
	return body, nil
}

// Close logs out and drops the connection.
func (cl *Client) Close() error {
	if err := cl.c.Logout().Wait(); err != nil {
		return cl.c.Close()
	}
	return cl.c.Close()
}

// ResolveHost picks the IMAP host for an account. An explicit host
// always wins; @qq.com accounts default to their provider's server;
// anything else defaults to Gmail.
func ResolveHost(account, host string) string {
	if host != "" {
		return host
	}
	if strings.HasSuffix(strings.ToLower(account), "@qq.com") {
		return "imap.qq.com"
	}
	return "imap.gmail.com"
}
