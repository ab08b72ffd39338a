package cameramodule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camarr-app/camarr/internal/database"
)

func newProbeServer(t *testing.T, channelsBody, objectsBody string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1.0/channels":
			w.WriteHeader(status)
			w.Write([]byte(channelsBody))
		case "/api/v1.0/smart/objects":
			w.WriteHeader(status)
			w.Write([]byte(objectsBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func probeTarget(srv *httptest.Server) *database.Camera {
	host := strings.TrimPrefix(srv.URL, "http://")
	return &database.Camera{ID: "cam-1", Host: host}
}

func TestListStreamChannels(t *testing.T) {
	srv := newProbeServer(t,
		`[{"name":"High","width":1920,"height":1080},{"name":"Low","width":640,"height":360}]`,
		`{}`,
		http.StatusOK,
	)
	probe := NewHTTPProbe(time.Second, 80, hclog.NewNullLogger())

	channels := probe.ListStreamChannels(context.Background(), probeTarget(srv))
	require.Len(t, channels, 2)
	assert.Equal(t, "High", channels[0].Name)
	assert.Equal(t, 1920, channels[0].Width)
	assert.Equal(t, "Low", channels[1].Name)
}

func TestListObjectClassesStripsMotion(t *testing.T) {
	srv := newProbeServer(t,
		`[]`,
		`{"classes":["person","motion","vehicle"]}`,
		http.StatusOK,
	)
	probe := NewHTTPProbe(time.Second, 80, hclog.NewNullLogger())

	classes := probe.ListObjectClasses(context.Background(), probeTarget(srv))
	assert.Equal(t, []string{"person", "vehicle"}, classes)
}

func TestProbeDegradesOnHTTPError(t *testing.T) {
	srv := newProbeServer(t, `[]`, `{}`, http.StatusInternalServerError)
	probe := NewHTTPProbe(time.Second, 80, hclog.NewNullLogger())

	assert.Nil(t, probe.ListStreamChannels(context.Background(), probeTarget(srv)))
	assert.Nil(t, probe.ListObjectClasses(context.Background(), probeTarget(srv)))
}

func TestProbeDegradesOnMalformedJSON(t *testing.T) {
	srv := newProbeServer(t, `{not json`, `also not json`, http.StatusOK)
	probe := NewHTTPProbe(time.Second, 80, hclog.NewNullLogger())

	assert.Nil(t, probe.ListStreamChannels(context.Background(), probeTarget(srv)))
	assert.Nil(t, probe.ListObjectClasses(context.Background(), probeTarget(srv)))
}

func TestProbeDegradesOnUnreachableHost(t *testing.T) {
	probe := NewHTTPProbe(200*time.Millisecond, 80, hclog.NewNullLogger())
	cam := &database.Camera{ID: "cam-1", Host: "127.0.0.1:1"}

	assert.Nil(t, probe.ListStreamChannels(context.Background(), cam))
	assert.Nil(t, probe.ListObjectClasses(context.Background(), cam))
}
