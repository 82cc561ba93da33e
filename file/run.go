package file

import (
	"context"
	"fmt"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/taybart/log"

	"github.com/zhucebuliaopx/requests/client"
)

// Run parses filename and executes every request block in order. Each
// block gets its own client so its own resolved configuration; a failed
// request stops the run.
func Run(ctx context.Context, filename string) error {
	config, entries, err := Parse(filename)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := exec(ctx, config, entry); err != nil {
			return err
		}
	}
	return nil
}

// RunLabel executes a single request block by label.
func RunLabel(ctx context.Context, filename, label string) error {
	config, entries, err := Parse(filename)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Label == label {
			return exec(ctx, config, entry)
		}
	}
	return fmt.Errorf("request label not found: %s", label)
}

func exec(ctx context.Context, config Config, entry Entry) error {
	if entry.Delay != "" {
		delay, err := time.ParseDuration(entry.Delay)
		if err != nil {
			return fmt.Errorf("request %s: bad delay: %w", entry.Label, err)
		}
		time.Sleep(delay)
	}

	c, err := client.New(entry.Options(config))
	if err != nil {
		return fmt.Errorf("request %s: %w", entry.Label, err)
	}

	target, err := withQuery(entry.URL, entry.Query)
	if err != nil {
		return fmt.Errorf("request %s: %w", entry.Label, err)
	}

	log.Debugf("running %s: %s %s\n", entry.Label, entry.Method, target)
	res, err := c.Do(ctx, entry.Method, target)
	if err != nil {
		return fmt.Errorf("request %s: %w", entry.Label, err)
	}
	defer res.Body.Close()

	dumped, err := httputil.DumpResponse(res, !c.Config.Stream)
	if err != nil {
		return err
	}
	fmt.Println(string(dumped))

	if entry.Expect != 0 && res.StatusCode != entry.Expect {
		return fmt.Errorf("request %s: unexpected response code %d != %d",
			entry.Label, res.StatusCode, entry.Expect)
	}
	return nil
}

func withQuery(rawurl string, query map[string]string) (string, error) {
	if len(query) == 0 {
		return rawurl, nil
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range query {
		q.Add(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
