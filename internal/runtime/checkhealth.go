package runtime

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
)

// CheckHealth probes the health route of a connector assumed to be running
// on the given host and port. It is the client side of the health endpoint,
// used by container health checks.
func CheckHealth(ctx context.Context, host string, port int) error {
	if host == "" {
		host = "localhost"
	}
	url := fmt.Sprintf("http://%s%s", net.JoinHostPort(host, strconv.Itoa(port)), healthRoute)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("unsuccessful response with status code %d: %s", resp.StatusCode, body)
}
