package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/studiowebux/ytsum/internal/api"
	"github.com/studiowebux/ytsum/internal/render"
)

// Health probes the backend root endpoint and reports the result
func Health(ctx context.Context, client *api.Client, w io.Writer) error {
	result, err := client.Health(ctx)
	if err != nil {
		if api.KindOf(err) == api.KindTimeout {
			return fmt.Errorf("backend %s did not answer the health check in time", client.BaseURL())
		}
		return fmt.Errorf("backend %s unreachable: %w", client.BaseURL(), err)
	}

	color := render.IsTerminal(w)
	if !result.OK {
		fmt.Fprintln(w, paint(color, colorYellow, fmt.Sprintf("✗ %s responded with status %q", client.BaseURL(), result.Status)))
		return fmt.Errorf("backend unhealthy: %s", result.Status)
	}

	fmt.Fprintf(w, "%s %s (%dms)\n", paint(color, colorGreen, "✓"), client.BaseURL(), result.Latency.Milliseconds())
	if result.Message != "" {
		fmt.Fprintln(w, paint(color, colorGray, result.Message))
	}
	return nil
}
