package drive

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// LoopbackAuthorizer completes the consent flow through a one-shot local HTTP callback.
type LoopbackAuthorizer struct {
	Port int
	Out  io.Writer // where the consent URL is printed
}

// Authorize prints the consent URL and blocks until the browser redirects back with a code.
func (a *LoopbackAuthorizer) Authorize(ctx context.Context, cfg *oauth2.Config, state string) (string, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", a.Port))
	if err != nil {
		return "", fmt.Errorf("failed to listen for oauth callback: %w", err)
	}

	cfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)

	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			switch {
			case q.Get("state") != state:
				http.Error(w, "state mismatch", http.StatusBadRequest)
				return
			case q.Get("error") != "":
				fmt.Fprintln(w, "Authorization denied. You can close this window.")
				done <- result{err: errors.New(q.Get("error"))}
			default:
				fmt.Fprintln(w, "Authorization complete. You can close this window.")
				done <- result{code: q.Get("code")}
			}
		}),
	}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(a.Out, "Open the following URL in your browser to authorize Google Drive access:\n\n%s\n\n", url)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		if res.code == "" {
			return "", errors.New("callback missing authorization code")
		}
		return res.code, nil
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
