package capture

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// ExportCookies serialises the browser's current cookies to a JSON blob
// suitable for the session store.
func ExportCookies(b *rod.Browser) (string, error) {
	cookies, err := b.GetCookies()
	if err != nil {
		return "", fmt.Errorf("capture: get cookies: %w", err)
	}
	raw, err := json.Marshal(cookies)
	if err != nil {
		return "", fmt.Errorf("capture: marshal cookies: %w", err)
	}
	return string(raw), nil
}

// ImportCookies applies a previously exported cookie blob to the
// browser, restoring the logged-in session.
func ImportCookies(b *rod.Browser, blob string) error {
	if blob == "" {
		return nil
	}
	var params []*proto.NetworkCookieParam
	if err := json.Unmarshal([]byte(blob), &params); err != nil {
		return fmt.Errorf("capture: parse cookies: %w", err)
	}
	if err := b.SetCookies(params); err != nil {
		return fmt.Errorf("capture: set cookies: %w", err)
	}
	return nil
}
