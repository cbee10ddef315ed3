package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"com.aviebrantz.radar-client/pkg/apitest"
	"com.aviebrantz.radar-client/pkg/core/settings"
	"com.aviebrantz.radar-client/pkg/core/store"
	"com.aviebrantz.radar-client/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporterServesTransportViews(t *testing.T) {
	exporter, err := NewExporter("127.0.0.1:0")
	require.NoError(t, err)

	ctx := context.Background()
	s := settings.New(store.NewSafe(store.NewMemoryStore()))
	s.Initialize(ctx, "prj_test_pk")
	s.SetHost(ctx, apitest.Host, "")

	api := apitest.New()
	client := transport.New(s, transport.WithHTTPClient(api.Client()))
	_, err = client.Request(ctx, http.MethodGet, "context", transport.Params{"coordinates": "1,2"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), Namespace+"_radar_transport_requests")
}
