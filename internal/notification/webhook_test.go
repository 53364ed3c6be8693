package notification

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
)

const testWebhookURL = "https://monitor.example.test/api/alerts"

func newMockedWebhook(t *testing.T, installationID string) *WebhookProvider {
	t.Helper()
	w := NewWebhookProvider(testWebhookURL, installationID, 0)
	httpmock.ActivateNonDefault(w.client.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return w
}

func TestWebhookProviderPostsAlert(t *testing.T) {
	w := newMockedWebhook(t, "inst-42")

	var (
		gotHeaders http.Header
		gotPayload WebhookPayload
	)
	httpmock.RegisterResponder(http.MethodPost, testWebhookURL,
		func(req *http.Request) (*http.Response, error) {
			gotHeaders = req.Header.Clone()
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(body, &gotPayload); err != nil {
				return nil, err
			}
			return httpmock.NewStringResponse(http.StatusCreated, `{"ok":true}`), nil
		})

	alert := testAlert(7)
	require.NoError(t, w.Send(t.Context(), &alert))

	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "zozi-alerts", gotHeaders.Get("User-Agent"))
	assert.Equal(t, "inst-42", gotHeaders.Get(headerInstallationID))
	_, err := uuid.Parse(gotHeaders.Get(headerDeliveryID))
	require.NoError(t, err, "delivery id must be a uuid")

	assert.Equal(t, "threshold_alert", gotPayload.Type)
	assert.Equal(t, "inst-42", gotPayload.InstallationID)
	require.NotNil(t, gotPayload.Alert)
	assert.Equal(t, uint(7), gotPayload.Alert.ID)
	assert.Equal(t, int64(107), gotPayload.Alert.InspectionID)
	assert.Contains(t, gotPayload.Title, "Swimming Pool")
	assert.Contains(t, gotPayload.Message, "scored 55.0")
}

func TestWebhookProviderOmitsEmptyInstallationID(t *testing.T) {
	w := newMockedWebhook(t, "")

	var header http.Header
	httpmock.RegisterResponder(http.MethodPost, testWebhookURL,
		func(req *http.Request) (*http.Response, error) {
			header = req.Header.Clone()
			return httpmock.NewStringResponse(http.StatusOK, ""), nil
		})

	alert := testAlert(1)
	require.NoError(t, w.Send(t.Context(), &alert))
	_, present := header[headerInstallationID]
	assert.False(t, present)
}

func TestWebhookProviderErrorStatus(t *testing.T) {
	w := newMockedWebhook(t, "inst")
	httpmock.RegisterResponder(http.MethodPost, testWebhookURL,
		httpmock.NewStringResponder(http.StatusServiceUnavailable, "maintenance"))

	alert := testAlert(1)
	err := w.Send(t.Context(), &alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "maintenance")
	assert.True(t, errors.IsCategory(err, errors.CategoryHTTP))
}

func TestWebhookProviderTransportError(t *testing.T) {
	w := newMockedWebhook(t, "inst")
	httpmock.RegisterResponder(http.MethodPost, testWebhookURL,
		httpmock.NewErrorResponder(errors.NewStd("connection refused")))

	alert := testAlert(1)
	err := w.Send(t.Context(), &alert)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))
}
