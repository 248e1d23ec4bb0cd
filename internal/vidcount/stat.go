// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vidcount

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Defaults for reading per-item statistics files.
const (
	DefaultStatsBaseURL  = "http://orastats.bodleian.ox.ac.uk"
	DefaultLocalRoot     = "/var/www/"
	DefaultRemoteTimeout = 5 * time.Second
)

var errShortID = errors.New("item id too short for a stats path")

// SubPath returns the stats file path for an item id of the form
// "uuid:aabbrest": /results/dv/aa/bb/rest.
func SubPath(id string) (string, error) {
	if len(id) < 10 {
		return "", fmt.Errorf("%q: %w", id, errShortID)
	}
	return fmt.Sprintf("/results/dv/%s/%s/%s", id[5:7], id[7:9], id[9:]), nil
}

// ItemStat is the result of reading the statistics of one item.
type ItemStat struct {
	ID        string
	Source    string
	Views     int
	Downloads int

	// OpenFailed is set when no stats file could be read.
	OpenFailed bool
	// DecodeFailed is set when the contents were not "downloads;views".
	DecodeFailed bool
}

// Clean reports whether both counts were read.
func (s ItemStat) Clean() bool { return !s.OpenFailed && !s.DecodeFailed }

// StatReader reads "downloads;views" files, first below LocalRoot and then,
// when EnableRemote is set, from BaseURL.
type StatReader struct {
	LocalRoot    string
	BaseURL      string
	EnableRemote bool

	// Client fetches remote files. It should carry the remote timeout.
	Client *resty.Client
}

// Read returns the statistics for id. Failures are recorded on the result,
// never returned: an unreadable item counts zero views and downloads.
func (r *StatReader) Read(ctx context.Context, id string) ItemStat {
	st := ItemStat{ID: id}
	sub, err := SubPath(id)
	if err != nil {
		st.DecodeFailed = true
		return st
	}
	st.Source = strings.TrimRight(r.BaseURL, "/") + sub

	body, ok := r.readLocal(sub)
	if ok {
		st.Source = filepath.Join(r.LocalRoot, filepath.FromSlash(sub))
	} else if r.EnableRemote && r.Client != nil {
		body, ok = r.readRemote(ctx, st.Source)
	}
	if !ok {
		st.OpenFailed = true
		body = "0;0"
	}

	st.Downloads, st.Views, err = ParseCounts(body)
	if err != nil {
		st.DecodeFailed = true
	}
	return st
}

func (r *StatReader) readLocal(sub string) (string, bool) {
	if r.LocalRoot == "" {
		return "", false
	}
	data, err := os.ReadFile(filepath.Join(r.LocalRoot, filepath.FromSlash(sub)))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (r *StatReader) readRemote(ctx context.Context, u string) (string, bool) {
	res, err := r.Client.R().SetContext(ctx).Get(u)
	if err != nil || !res.IsSuccess() {
		return "", false
	}
	return res.String(), true
}

// ParseCounts splits "downloads;views". A missing or non-numeric part
// counts as zero and makes the error non-nil.
func ParseCounts(s string) (downloads, views int, err error) {
	parts := strings.Split(s, ";")
	var errs []error

	downloads, e := atoiPart(parts, 0)
	errs = append(errs, e)
	views, e = atoiPart(parts, 1)
	errs = append(errs, e)

	return downloads, views, errors.Join(errs...)
}

func atoiPart(parts []string, i int) (int, error) {
	if i >= len(parts) {
		return 0, fmt.Errorf("part %d missing", i+1)
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0, fmt.Errorf("part %d: %w", i+1, err)
	}
	return n, nil
}
