package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phoneshop/posclient/internal/client/client"
)

var getMultiline = GetMultiline

// Get performs an authenticated GET on path and prints the response.
func (a *App) Get(ctx context.Context, path string) error {
	return a.send(ctx, client.RequestSpec{Method: http.MethodGet, Path: normalizePath(path)})
}

// Post reads a JSON body from the user and POSTs it to path.
func (a *App) Post(ctx context.Context, path string) error {
	body, err := getMultiline(a.reader, "Enter JSON body", a.out)
	if err != nil {
		return err
	}
	spec := client.RequestSpec{Method: http.MethodPost, Path: normalizePath(path)}
	if body != "" {
		if !json.Valid([]byte(body)) {
			fmt.Fprintln(a.out, "Body is not valid JSON.")
			return errors.New("invalid json body")
		}
		spec.Body = json.RawMessage(body)
	}
	return a.send(ctx, spec)
}

func (a *App) send(ctx context.Context, spec client.RequestSpec) error {
	resp, err := a.api.Do(ctx, spec)
	if err != nil {
		a.report(ctx, spec.Method+" "+spec.Path, err)
		return err
	}

	fmt.Fprintf(a.out, "%d %s\n", resp.Status, http.StatusText(resp.Status))
	if len(resp.Body) == 0 {
		return nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Body, "", "  "); err != nil {
		fmt.Fprintln(a.out, string(resp.Body))
		return nil
	}
	fmt.Fprintln(a.out, pretty.String())
	return nil
}

func normalizePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}
