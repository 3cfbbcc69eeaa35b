package counter

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// DefaultCookieName is the cookie anonymous search counts live in.
const DefaultCookieName = "search_count"

// Cookie adapts a single request/response pair into a counter store, which is
// how anonymous usage stays device-scoped without any server-side state. The
// counter key is ignored; the cookie name is the scope. Writes are plain
// read-modify-write, so two concurrent tabs can lose an update. That matches
// the intended guarantee for anonymous counting.
type Cookie struct {
	name  string
	req   *http.Request
	w     http.ResponseWriter
	ttl   time.Duration
	value *int
}

// NewCookie builds a store over one request/response exchange. ttl becomes
// the cookie max-age on writes.
func NewCookie(w http.ResponseWriter, r *http.Request, name string, ttl time.Duration) *Cookie {
	if name == "" {
		name = DefaultCookieName
	}
	return &Cookie{name: name, req: r, w: w, ttl: ttl}
}

func (c *Cookie) Get(_ context.Context, _ string) (int, bool, error) {
	if c.value != nil {
		return *c.value, true, nil
	}
	ck, err := c.req.Cookie(c.name)
	if err != nil {
		return 0, false, nil
	}
	n, err := strconv.Atoi(ck.Value)
	if err != nil || n < 0 {
		return 0, false, nil
	}
	return n, true, nil
}

func (c *Cookie) Set(_ context.Context, _ string, n int, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.write(strconv.Itoa(n), int(ttl/time.Second))
	c.value = &n
	return nil
}

func (c *Cookie) IncrementOrCreate(ctx context.Context, key string) (int, error) {
	n, _, err := c.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n++
	if err := c.Set(ctx, key, n, c.ttl); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *Cookie) Delete(_ context.Context, _ string) error {
	c.write("", -1)
	zero := 0
	c.value = &zero
	return nil
}

func (c *Cookie) write(value string, maxAge int) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
