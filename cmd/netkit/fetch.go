// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gogama/netkit"
	"github.com/gogama/netkit/config"
	"github.com/gogama/netkit/content"
	"github.com/gogama/netkit/mock"
	"github.com/gogama/netkit/request"
	"github.com/spf13/cobra"
)

type fetchOptions struct {
	method      string
	headers     []string
	data        string
	contentType string
	timeout     time.Duration
	mockKey     string
	useMock     bool
	record      bool
	include     bool
	user        string
	cookies     []string
}

// cliEndpoint is the endpoint of requests made by the command.
type cliEndpoint struct {
	netkit.Named
	mocks   *mock.Manager
	user    string
	cookies []*http.Cookie
}

func (ep cliEndpoint) Mocks() netkit.MockManager {
	return ep.mocks
}

// ConfigureURLRequest adds the credentials and cookies given on the
// command line to the wire request.
func (ep cliEndpoint) ConfigureURLRequest(p *request.Plan, _ *netkit.Request, _ netkit.Flags) error {
	if ep.user != "" {
		name, password, _ := strings.Cut(ep.user, ":")
		p.SetBasicAuth(name, password)
	}
	for _, c := range ep.cookies {
		p.AddCookie(c)
	}
	return nil
}

func newFetchCmd() *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch [flags] URL",
		Short: "Send a request and print the decoded response",
		Example: `  netkit fetch https://api.example.com/items
  netkit fetch -X POST -d '{"name":"x"}' https://api.example.com/items
  netkit fetch --mock-key items --record https://api.example.com/items
  netkit fetch --mock-key items --mock https://api.example.com/items`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("config")
			return runFetch(cmd.OutOrStdout(), cmd.ErrOrStderr(), file, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.method, "method", "X", "GET", "HTTP method")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	f.StringVarP(&opts.data, "data", "d", "", "request body")
	f.StringVar(&opts.contentType, "content-type", "", "content type of the request body (default: JSON if the body is JSON)")
	f.DurationVar(&opts.timeout, "timeout", 0, "request timeout (default: from settings)")
	f.StringVar(&opts.mockKey, "mock-key", "", "mock key of the request")
	f.BoolVar(&opts.useMock, "mock", false, "replay the response stored under the mock key")
	f.BoolVar(&opts.record, "record", false, "record the response under the mock key")
	f.BoolVarP(&opts.include, "include", "i", false, "print response headers")
	f.StringVarP(&opts.user, "user", "u", "", "basic auth credentials as 'name:password'")
	f.StringArrayVarP(&opts.cookies, "cookie", "b", nil, "cookies as 'name=value; name2=value2' (repeatable)")
	return cmd
}

func runFetch(w, errw io.Writer, file, rawURL string, opts *fetchOptions) error {
	settings, err := config.Load(file)
	if err != nil {
		return err
	}
	logger, err := settings.Logger()
	if err != nil {
		return err
	}
	mocks, closer, err := settings.MockManager(logger)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	if (opts.record || opts.useMock) && opts.mockKey == "" {
		return errors.New("--mock and --record need --mock-key")
	}
	// The command records synchronously, below, so it can report errors.
	mocks.Recording = false

	ep := cliEndpoint{Named: "netkit-cli", mocks: mocks, user: opts.user}
	for _, line := range opts.cookies {
		cookies, err := http.ParseCookie(line)
		if err != nil {
			return fmt.Errorf("bad cookie %q: %w", line, err)
		}
		ep.cookies = append(ep.cookies, cookies...)
	}
	r, err := settings.Client(logger).NewRequest(ep, opts.method)
	if err != nil {
		return err
	}
	if err = r.URL.SetString(rawURL); err != nil {
		return err
	}
	for _, h := range opts.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("bad header %q: want 'Name: value'", h)
		}
		r.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if opts.data != "" {
		r.Body = requestBody(opts.data, opts.contentType)
	}
	r.Timeout = opts.timeout
	r.MockKey = opts.mockKey
	if opts.useMock {
		r.Mock = netkit.MockOn
	}

	type result struct {
		value interface{}
		resp  *http.Response
		err   error
	}
	ch := make(chan result, 1)
	r.Start(netkit.Inline, func(value interface{}, resp *http.Response, err error) {
		ch <- result{value, resp, err}
	})
	res := <-ch
	if res.err != nil {
		return res.err
	}
	printStatus(w, res.resp, r.Execution().Mock)
	if opts.include {
		printHeader(w, res.resp.Header)
	}
	if err = printValue(w, res.value); err != nil {
		return err
	}
	if opts.record && !r.Execution().Mock {
		u, err := r.URL.URL()
		if err != nil {
			return err
		}
		if err = mocks.RecordMock(context.Background(), opts.mockKey, u, r.Execution().Body, res.resp); err != nil {
			return fmt.Errorf("failed to record response: %w", err)
		}
		color.New(color.FgCyan).Fprintf(errw, "recorded %s\n", opts.mockKey)
	}
	if code := res.resp.StatusCode; code >= 400 {
		return fmt.Errorf("HTTP %d", code)
	}
	return nil
}

func requestBody(data, contentType string) content.Converter {
	if contentType == "" && json.Valid([]byte(data)) {
		return content.NewJSON(data)
	}
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	return content.NewRaw(contentType, data)
}

func printStatus(w io.Writer, resp *http.Response, mocked bool) {
	c := color.New(color.Bold)
	switch {
	case resp.StatusCode >= 500:
		c.Add(color.FgRed)
	case resp.StatusCode >= 400:
		c.Add(color.FgYellow)
	default:
		c.Add(color.FgGreen)
	}
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	c.Fprint(w, status)
	if mocked {
		color.New(color.FgCyan).Fprint(w, " (mock)")
	}
	fmt.Fprintln(w)
}

func printHeader(w io.Writer, h http.Header) {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	key := color.New(color.FgBlue)
	for _, name := range names {
		for _, v := range h[name] {
			key.Fprint(w, name)
			fmt.Fprintf(w, ": %s\n", v)
		}
	}
	fmt.Fprintln(w)
}

func printValue(w io.Writer, value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		_, err := w.Write(v)
		return err
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	case image.Image:
		b := v.Bounds()
		_, err := fmt.Fprintf(w, "image %dx%d\n", b.Dx(), b.Dy())
		return err
	case []content.Part:
		for i, p := range v {
			if _, err := fmt.Fprintf(w, "part %d: %s, %d bytes\n", i, p.ContentType(), len(p.Body)); err != nil {
				return err
			}
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
