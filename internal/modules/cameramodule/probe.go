package cameramodule

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/types"
)

// motionClass is the pseudo-class camera firmware reports for plain motion.
// It is not a detectable object and is stripped from probe results.
const motionClass = "motion"

// Prober answers live capability questions about a camera. Implementations
// must degrade to empty results on failure; schema derivation never sees a
// probe error.
type Prober interface {
	ListStreamChannels(ctx context.Context, cam *database.Camera) []types.StreamChannel
	ListObjectClasses(ctx context.Context, cam *database.Camera) []string
}

// HTTPProbe queries the camera's local HTTP API.
type HTTPProbe struct {
	client *http.Client
	port   int
	logger hclog.Logger
}

// NewHTTPProbe creates a probe. port is used for hosts that do not carry an
// explicit port.
func NewHTTPProbe(timeout time.Duration, port int, logger hclog.Logger) *HTTPProbe {
	return &HTTPProbe{
		client: &http.Client{Timeout: timeout},
		port:   port,
		logger: logger,
	}
}

// ListStreamChannels returns the camera's advertised video channels, or nil
// when the camera cannot be reached or answers garbage.
func (p *HTTPProbe) ListStreamChannels(ctx context.Context, cam *database.Camera) []types.StreamChannel {
	var channels []types.StreamChannel
	if err := p.getJSON(ctx, cam, "/api/v1.0/channels", &channels); err != nil {
		p.logger.Warn("stream channel probe failed", "camera", cam.ID, "host", cam.Host, "error", err)
		return nil
	}
	return channels
}

// ListObjectClasses returns the object classes the camera's detector can
// report, with the motion pseudo-class stripped. Failures yield nil.
func (p *HTTPProbe) ListObjectClasses(ctx context.Context, cam *database.Camera) []string {
	var payload struct {
		Classes []string `json:"classes"`
	}
	if err := p.getJSON(ctx, cam, "/api/v1.0/smart/objects", &payload); err != nil {
		p.logger.Warn("object class probe failed", "camera", cam.ID, "host", cam.Host, "error", err)
		return nil
	}
	classes := make([]string, 0, len(payload.Classes))
	for _, class := range payload.Classes {
		if class == motionClass {
			continue
		}
		classes = append(classes, class)
	}
	return classes
}

func (p *HTTPProbe) getJSON(ctx context.Context, cam *database.Camera, path string, out interface{}) error {
	url := fmt.Sprintf("http://%s%s", p.hostPort(cam.Host), path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *HTTPProbe) hostPort(host string) string {
	if strings.Contains(host, ":") {
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(p.port))
}
